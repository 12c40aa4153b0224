//go:build ORT

package sentiment

import "github.com/knights-analytics/hugot"

// newHugotSession uses ONNX Runtime; onnxruntime.so must be installed.
func newHugotSession() (*hugot.Session, error) {
	return hugot.NewORTSession()
}
