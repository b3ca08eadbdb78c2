// Package fmprobe reads the metadata structures of media files and prints
// them as an indented, human-readable report.
//
// Four container families are understood:
//
//   - TIFF and EXIF: the IFD chain of bare TIFF files and of the APP1
//     segment of JPEG files, including the Exif, GPS and Interoperability
//     sub-directories
//   - ISO base media (MP4, M4A, QuickTime): the box tree, with movie and
//     handler headers, iTunes item lists and the Windows Media Xtra box
//   - ID3v2 in MP3: the tag header, unsynchronisation and every frame
//   - Standard MIDI Files: the header chunk and the event stream of each
//     track
//
// # Quick Start
//
//	res, err := fmprobe.ProbeFile(os.Stdout, "photo.jpg")
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(res.Format, len(res.Warnings))
//
// The report for a JPEG looks like:
//
//	FileType: jpeg
//	ifd0
//	  Make(0x010f): Canon
//	  Orientation(0x0112): 1
//	  ExifOffset(0x8769): ExifSubIFD at offset 0x9a
//	  ExifSubIFD
//	    ExposureTime(0x829a): 1/200
//	...
//
// # Error Handling
//
// Decoding is best effort. A failure confined to one unit (a directory
// entry, a box, a frame, a track) is printed inline as a "!! ..." line,
// recorded in Result.Warnings and the walk continues with the next unit.
// A failure in the framing of the container itself ends the walk; it is
// printed and returned.
//
// Errors are classified with errors.Is:
//
//	_, err := fmprobe.ProbeFile(os.Stdout, "broken.mid")
//	if errors.Is(err, fmprobe.ErrTruncated) {
//		// the file is shorter than a chunk declares
//	}
//
// Result.Err aggregates the per-unit diagnostics the same way.
// WithStrictParsing turns any of them into a returned error.
//
// # Batches
//
// ProbeFiles reports on many files in input order. WithConcurrency lets it
// decode several at once without changing the output.
package fmprobe
