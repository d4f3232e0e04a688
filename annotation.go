package pdflayout

import (
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
)

// PageAnnotation is the classified inventory of one page.
type PageAnnotation struct {
	ImageWidth  int
	ImageHeight int
	ImagePath   string
	Regions     map[RegionType][]Box
}

// NewPageAnnotation creates an annotation with an empty list for every region type.
func NewPageAnnotation(width, height int, imagePath string) PageAnnotation {
	regions := make(map[RegionType][]Box, len(RegionTypes))
	for _, rt := range RegionTypes {
		regions[rt] = []Box{}
	}
	return PageAnnotation{
		ImageWidth:  width,
		ImageHeight: height,
		ImagePath:   imagePath,
		Regions:     regions,
	}
}

// Count returns the total number of regions across all types.
func (a PageAnnotation) Count() int {
	n := 0
	for _, boxes := range a.Regions {
		n += len(boxes)
	}
	return n
}

// MarshalJSON writes the flat training record:
// {"image_height":…, "image_width":…, "image_path":…, "<type>": [[x0,y0,x1,y1],…], …}
func (a PageAnnotation) MarshalJSON() ([]byte, error) {
	buf := []byte{'{'}
	buf = fmt.Appendf(buf, `"image_height":%d,"image_width":%d,"image_path":`, a.ImageHeight, a.ImageWidth)

	path, err := json.Marshal(a.ImagePath)
	if err != nil {
		return nil, err
	}
	buf = append(buf, path...)

	for _, rt := range RegionTypes {
		coords := make([][4]int, 0, len(a.Regions[rt]))
		for _, box := range a.Regions[rt] {
			coords = append(coords, box.Ints())
		}
		encoded, err := json.Marshal(coords)
		if err != nil {
			return nil, err
		}
		buf = fmt.Appendf(buf, `,"%s":`, rt)
		buf = append(buf, encoded...)
	}

	return append(buf, '}'), nil
}

// UnmarshalJSON reads a record written by MarshalJSON.
func (a *PageAnnotation) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*a = NewPageAnnotation(0, 0, "")
	for key, value := range raw {
		switch key {
		case "image_height":
			if err := json.Unmarshal(value, &a.ImageHeight); err != nil {
				return errors.Wrap(err, "image_height")
			}
		case "image_width":
			if err := json.Unmarshal(value, &a.ImageWidth); err != nil {
				return errors.Wrap(err, "image_width")
			}
		case "image_path":
			if err := json.Unmarshal(value, &a.ImagePath); err != nil {
				return errors.Wrap(err, "image_path")
			}
		default:
			rt, err := ParseRegionType(key)
			if err != nil {
				return err
			}
			var coords [][4]int
			if err := json.Unmarshal(value, &coords); err != nil {
				return errors.Wrapf(err, "region %s", key)
			}
			for _, c := range coords {
				a.Regions[rt] = append(a.Regions[rt], Box{
					X0: float64(c[0]),
					Y0: float64(c[1]),
					X1: float64(c[2]),
					Y1: float64(c[3]),
				})
			}
		}
	}
	return nil
}
