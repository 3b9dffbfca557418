package combat

//go:generate go tool mockgen -destination=mocks/mock_detection.go -package=mocks github.com/cory-johannsen/blightfall/internal/game/combat DetectionHook

// DetectionHook is told when healing reveals a corrupted player. The round
// engine calls it synchronously; implementations must not block.
type DetectionHook interface {
	RoleDetected(detectorID, detectedID string, round int)
}
