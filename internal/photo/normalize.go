// Package photo turns the loosely typed photo arguments accepted by the tool
// surface into decoded images.
package photo

import (
	"encoding/base64"
	"fmt"
	"math"
	"strings"

	"homefix/internal/model"
)

const (
	MinPhotos = 1
	MaxPhotos = 5
	// MaxBytes caps a single decoded photo.
	MaxBytes = 5 << 20

	defaultMIMEType = model.MIMEJPEG
)

// NormalizeAll validates the photo count and normalizes each entry in order.
func NormalizeAll(inputs []interface{}) ([]model.Photo, error) {
	if len(inputs) < MinPhotos || len(inputs) > MaxPhotos {
		return nil, fmt.Errorf("%w: photos must contain between %d and %d items", model.ErrValidation, MinPhotos, MaxPhotos)
	}
	out := make([]model.Photo, 0, len(inputs))
	for idx, in := range inputs {
		p, err := Normalize(in)
		if err != nil {
			return nil, fmt.Errorf("photos[%d]: %w", idx, err)
		}
		out = append(out, p)
	}
	return out, nil
}

// Normalize accepts a bare base64 string, a data: URI, or an object with
// data, mimeType and annotations keys. A mime type declared inside a data:
// URI wins over an explicit mimeType.
func Normalize(input interface{}) (model.Photo, error) {
	var (
		data        string
		mimeType    string
		annotations []model.Annotation
	)

	switch v := input.(type) {
	case string:
		data = v
	case map[string]interface{}:
		raw, ok := v["data"].(string)
		if !ok {
			return model.Photo{}, fmt.Errorf("%w: photo object requires a string data field", model.ErrMalformedInput)
		}
		data = raw
		if rawMIME, present := v["mimeType"]; present && rawMIME != nil {
			s, ok := rawMIME.(string)
			if !ok {
				return model.Photo{}, fmt.Errorf("%w: mimeType must be a string", model.ErrValidation)
			}
			mimeType = s
		}
		parsed, err := parseAnnotations(v["annotations"])
		if err != nil {
			return model.Photo{}, err
		}
		annotations = parsed
	default:
		return model.Photo{}, fmt.Errorf("%w: photo must be a string or an object", model.ErrMalformedInput)
	}

	data = strings.TrimSpace(data)
	if data == "" {
		return model.Photo{}, fmt.Errorf("%w: photo data is empty", model.ErrValidation)
	}

	if strings.HasPrefix(strings.ToLower(data), "data:") {
		header, payload, ok := strings.Cut(data, ",")
		if !ok {
			return model.Photo{}, fmt.Errorf("%w: data URI has no payload", model.ErrMalformedInput)
		}
		if declared := dataURIMIMEType(header); declared != "" {
			mimeType = declared
		}
		data = payload
	}

	mimeType = canonicalMIMEType(mimeType)
	if !isSupported(mimeType) {
		return model.Photo{}, fmt.Errorf("%w: %q (allowed: %s)", model.ErrUnsupportedMediaType, mimeType, strings.Join(model.SupportedImageMIMETypes, ", "))
	}

	decoded, err := decodeBase64(data)
	if err != nil {
		return model.Photo{}, fmt.Errorf("%w: photo payload is not valid base64", model.ErrMalformedInput)
	}
	if len(decoded) == 0 {
		return model.Photo{}, fmt.Errorf("%w: photo payload is empty", model.ErrValidation)
	}
	if len(decoded) > MaxBytes {
		return model.Photo{}, fmt.Errorf("%w: photo exceeds %d bytes", model.ErrValidation, MaxBytes)
	}

	return model.Photo{
		Bytes:       decoded,
		MIMEType:    mimeType,
		Annotations: annotations,
	}, nil
}

// DataURI renders a photo back into a data: URI for providers that take
// inline image URLs.
func DataURI(p model.Photo) string {
	return "data:" + p.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(p.Bytes)
}

func dataURIMIMEType(header string) string {
	mediaType, _, _ := strings.Cut(header[len("data:"):], ";")
	return strings.TrimSpace(mediaType)
}

func canonicalMIMEType(mimeType string) string {
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	switch mimeType {
	case "":
		return defaultMIMEType
	case "image/jpg", "image/pjpeg":
		return model.MIMEJPEG
	}
	return mimeType
}

func isSupported(mimeType string) bool {
	for _, allowed := range model.SupportedImageMIMETypes {
		if mimeType == allowed {
			return true
		}
	}
	return false
}

func decodeBase64(s string) ([]byte, error) {
	s = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\n', '\r', '\t':
			return -1
		}
		return r
	}, s)
	if decoded, err := base64.StdEncoding.DecodeString(s); err == nil {
		return decoded, nil
	}
	return base64.RawStdEncoding.DecodeString(strings.TrimRight(s, "="))
}

func parseAnnotations(raw interface{}) ([]model.Annotation, error) {
	if raw == nil {
		return nil, nil
	}
	items, ok := raw.([]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: annotations must be an array", model.ErrValidation)
	}
	out := make([]model.Annotation, 0, len(items))
	for idx, item := range items {
		obj, ok := item.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("%w: annotations[%d] must be an object", model.ErrValidation, idx)
		}
		x, okX := obj["x"].(float64)
		y, okY := obj["y"].(float64)
		if !okX || !okY || math.IsNaN(x) || math.IsNaN(y) {
			return nil, fmt.Errorf("%w: annotations[%d] requires numeric x and y", model.ErrValidation, idx)
		}
		a := model.Annotation{X: x, Y: y}
		if rawLabel, present := obj["label"]; present && rawLabel != nil {
			label, ok := rawLabel.(string)
			if !ok {
				return nil, fmt.Errorf("%w: annotations[%d].label must be a string", model.ErrValidation, idx)
			}
			a.Label = strings.TrimSpace(label)
		}
		out = append(out, a)
	}
	return out, nil
}
