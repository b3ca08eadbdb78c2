package exif

import "fmt"

// namespace selects the tag tables used for one directory.
type namespace int

const (
	nsImage namespace = iota // IFD0, IFD1, ... and the Exif sub-directory
	nsGPS
	nsInterop
)

// Tags whose declared type is ignored.
const (
	tagExifOffset      = 0x8769
	tagGPSInfo         = 0x8825
	tagInteropOffset   = 0xa005
	tagMakerNote       = 0x927c
	tagUserComment     = 0x9286
	tagPadding         = 0xea1c
	tagXPTitle         = 0x9c9b
	tagXPComment       = 0x9c9c
	tagXPAuthor        = 0x9c9d
	tagXPKeywords      = 0x9c9e
	tagXPSubject       = 0x9c9f
	tagGPSProcessing   = 0x001b
	tagGPSAreaInfo     = 0x001c
	tagInteropIndex    = 0x0001
	tagInteropVersion  = 0x0002
	tagRelatedFileForm = 0x1000
)

// imageOverrides apply in IFD0-style and Exif directories.
var imageOverrides = map[uint16]kind{
	tagExifOffset:    kindExifIFD,
	tagGPSInfo:       kindGPSIFD,
	tagInteropOffset: kindInteropIFD,
	tagMakerNote:     kindByteCount,
	tagPadding:       kindByteCount,
	tagXPTitle:       kindUTF16,
	tagXPComment:     kindUTF16,
	tagXPAuthor:      kindUTF16,
	tagXPKeywords:    kindUTF16,
	tagXPSubject:     kindUTF16,
	tagUserComment:   kindUserComment,
}

// gpsOverrides apply in the GPS directory.
var gpsOverrides = map[uint16]kind{
	tagGPSProcessing: kindUserComment,
	tagGPSAreaInfo:   kindUserComment,
}

// interopTagNames covers the Interoperability directory.
var interopTagNames = map[uint16]string{
	tagInteropIndex:    "InteropIndex",
	tagInteropVersion:  "InteropVersion",
	tagRelatedFileForm: "RelatedImageFileFormat",
	0x1001:             "RelatedImageWidth",
	0x1002:             "RelatedImageHeight",
}

// pointerNames are the section headings for nested directories.
var pointerNames = map[kind]string{
	kindExifIFD:    "ExifSubIFD",
	kindGPSIFD:     "GPSIFD",
	kindInteropIFD: "InteropIFD",
}

// pointerNamespaces gives the namespace a nested directory is read in.
var pointerNamespaces = map[kind]namespace{
	kindExifIFD:    nsImage,
	kindGPSIFD:     nsGPS,
	kindInteropIFD: nsInterop,
}

// resolveKind applies the override table for ns, falling back to the
// declared type.
func resolveKind(ns namespace, tag, typ uint16) kind {
	var overrides map[uint16]kind
	switch ns {
	case nsImage:
		overrides = imageOverrides
	case nsGPS:
		overrides = gpsOverrides
	case nsInterop:
		overrides = nil
	}

	if k, ok := overrides[tag]; ok {
		return k
	}
	return kindOfType(typ)
}

// tagName returns the display name for tag in ns.
func tagName(ns namespace, tag uint16) string {
	var names map[uint16]string
	switch ns {
	case nsImage:
		names = tagNames
	case nsGPS:
		names = gpsTagNames
	case nsInterop:
		names = interopTagNames
	}

	if name, ok := names[tag]; ok {
		return name
	}
	return fmt.Sprintf("Tag0x%04x", tag)
}
