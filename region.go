package pdflayout

import "github.com/pkg/errors"

// RegionType is the semantic class assigned to a region.
type RegionType string

const (
	RegionTitle            RegionType = "title"
	RegionParagraph        RegionType = "paragraph"
	RegionTable            RegionType = "table"
	RegionPicture          RegionType = "picture"
	RegionTableSignature   RegionType = "table_signature"
	RegionPictureSignature RegionType = "picture_signature"
	RegionNumberedList     RegionType = "numbered_list"
	RegionMarkedList       RegionType = "marked_list"
	RegionHeader           RegionType = "header"
	RegionFooter           RegionType = "footer"
	RegionFootnote         RegionType = "footnote"
	RegionFormula          RegionType = "formula"
	RegionMultiColumnText  RegionType = "multicolumn_text"
)

// RegionTypes lists every region type in serialisation order.
var RegionTypes = []RegionType{
	RegionTitle,
	RegionParagraph,
	RegionTable,
	RegionPicture,
	RegionTableSignature,
	RegionPictureSignature,
	RegionNumberedList,
	RegionMarkedList,
	RegionHeader,
	RegionFooter,
	RegionFootnote,
	RegionFormula,
	RegionMultiColumnText,
}

// ParseRegionType converts a serialised name back into a RegionType.
func ParseRegionType(name string) (RegionType, error) {
	for _, rt := range RegionTypes {
		if string(rt) == name {
			return rt, nil
		}
	}
	return "", errors.Errorf("unknown region type %q", name)
}

// regionColors is the overlay palette, one hex colour per region type.
var regionColors = map[RegionType]string{
	RegionTitle:            "#ff0000",
	RegionParagraph:        "#00ff00",
	RegionTable:            "#0000ff",
	RegionPicture:          "#ffa500",
	RegionTableSignature:   "#800080",
	RegionPictureSignature: "#ffc0cb",
	RegionNumberedList:     "#a52a2a",
	RegionMarkedList:       "#00ffff",
	RegionHeader:           "#ffff00",
	RegionFooter:           "#808080",
	RegionFootnote:         "#008000",
	RegionFormula:          "#e4e464",
	RegionMultiColumnText:  "#000000",
}
