package mockup

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Image is an in-memory image blob. It serializes as a data URI so a history
// blob stays a single self-contained JSON document.
type Image struct {
	MIMEType string
	Data     []byte
}

func NewImage(data []byte) Image {
	return Image{MIMEType: http.DetectContentType(data), Data: data}
}

func (img Image) Empty() bool {
	return len(img.Data) == 0
}

// Ext returns a file extension for the image type, without the dot.
func (img Image) Ext() string {
	switch img.MIMEType {
	case "image/png":
		return "png"
	case "image/gif":
		return "gif"
	case "image/webp":
		return "webp"
	default:
		return "jpg"
	}
}

func (img Image) DataURI() string {
	mime := img.MIMEType
	if mime == "" {
		mime = "image/jpeg"
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(img.Data)
}

var errNotDataURI = errors.New("not a base64 data URI")

func ParseDataURI(uri string) (Image, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return Image{}, errNotDataURI
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return Image{}, errNotDataURI
	}
	mime, ok := strings.CutSuffix(meta, ";base64")
	if !ok {
		return Image{}, errNotDataURI
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return Image{}, fmt.Errorf("decode image payload: %w", err)
	}
	return Image{MIMEType: mime, Data: data}, nil
}

func (img Image) MarshalJSON() ([]byte, error) {
	return json.Marshal(img.DataURI())
}

func (img *Image) UnmarshalJSON(data []byte) error {
	var uri string
	if err := json.Unmarshal(data, &uri); err != nil {
		return err
	}
	parsed, err := ParseDataURI(uri)
	if err != nil {
		return err
	}
	*img = parsed
	return nil
}
