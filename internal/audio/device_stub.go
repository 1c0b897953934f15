//go:build audio_stub

package audio

// NewDeviceContext always fails in builds without an audio backend; the
// engine then runs silently.
func NewDeviceContext(sampleRate int) (Context, error) {
	return nil, ErrUnavailable
}
