// Package vision wraps the GoCV (OpenCV) primitives used to turn frames into
// motion candidates.
package vision

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"gocv.io/x/gocv"
)

// ErrDecode is returned when frame data cannot be turned into an image.
var ErrDecode = errors.New("failed to decode image")

// DecodeBase64 decodes base64 image data (JPEG, PNG, ...) into a BGR Mat.
// A data URL prefix such as "data:image/jpeg;base64," is accepted.
// The caller is responsible for closing the returned Mat.
func DecodeBase64(data string) (gocv.Mat, error) {
	if i := strings.Index(data, ","); i >= 0 && strings.HasPrefix(data, "data:") {
		data = data[i+1:]
	}
	data = strings.TrimSpace(data)
	if data == "" {
		return gocv.NewMat(), fmt.Errorf("%w: empty frame data", ErrDecode)
	}

	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("%w: %v", ErrDecode, err)
	}

	return DecodeBytes(raw)
}

// DecodeBytes decodes encoded image bytes into a BGR Mat.
func DecodeBytes(raw []byte) (gocv.Mat, error) {
	if len(raw) == 0 {
		return gocv.NewMat(), fmt.Errorf("%w: empty image buffer", ErrDecode)
	}

	mat, err := gocv.IMDecode(raw, gocv.IMReadColor)
	if err == nil && !mat.Empty() {
		return mat, nil
	}
	mat.Close()

	if err != nil {
		return gocv.NewMat(), fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return gocv.NewMat(), fmt.Errorf("%w: unrecognized image format", ErrDecode)
}

// EncodeBase64 encodes a Mat as base64 JPEG.
func EncodeBase64(mat gocv.Mat) (string, error) {
	buf, err := gocv.IMEncode(gocv.JPEGFileExt, mat)
	if err != nil {
		return "", fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()

	return base64.StdEncoding.EncodeToString(buf.GetBytes()), nil
}
