package pyramid

import (
	"github.com/creasty/defaults"
	"github.com/perimeterx/marshmallow"
)

// Metadata is the pyramid descriptor as delivered by the tile server.
// It follows the Deep Zoom layout and can be decoded from both its JSON and XML forms.
type Metadata struct {
	Image Image `json:"Image"`
}

type Image struct {
	Format   string  `json:"Format" xml:"Format,attr" default:"png" validate:"required"`
	Overlap  float64 `json:"Overlap" xml:"Overlap,attr" validate:"gte=0,lte=1"`
	TileSize int     `json:"TileSize" xml:"TileSize,attr" validate:"gt=0"`
	Size     Size    `json:"Size" xml:"Size"`

	// Extra holds descriptor keys not known to this package (e.g. "xmlns").
	Extra map[string]any `json:"-" xml:"-"`
}

type Size struct {
	Width  int `json:"Width" xml:"Width,attr" validate:"gt=0"`
	Height int `json:"Height" xml:"Height,attr" validate:"gt=0"`
}

func (im *Image) UnmarshalJSON(data []byte) error {
	err := defaults.Set(im)
	if err != nil {
		return err
	}

	extra, err := marshmallow.Unmarshal(data, im, marshmallow.WithExcludeKnownFieldsFromMap(true))
	if err != nil {
		return err
	}
	if len(extra) > 0 {
		im.Extra = extra
	}
	return nil
}
