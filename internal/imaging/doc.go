// Package imaging adapts decoded images to the pixel grids the mapping engine
// works on, and back.
//
// It owns everything the engine deliberately does not: decoding files,
// resizing the source image to the template's dimensions, dropping alpha,
// and encoding results as files or base64 PNG. Decoding, resampling and
// encoding are delegated to github.com/disintegration/imaging.
//
// # Coordinate System
//
// All pixel coordinates are 0-based with (0,0) at the top-left corner,
// X increasing rightward and Y increasing downward. Grids produced here are
// always anchored at (0,0) regardless of the source image's bounds.
//
// # Alpha
//
// Images are read through the non-premultiplied NRGBA model and their alpha
// channel is discarded, so a template pixel's bucket depends only on its RGB
// value. Output images are fully opaque.
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. All other functions are
// stateless and can be called concurrently on different images.
//
// # Error Handling
//
// Functions return errors for:
//   - File I/O and decode failures
//   - Unknown resampling filter names (ErrUnknownFilter)
//   - Encoding failures and unsupported output extensions
//
// # Performance Considerations
//
// For repeated mappings against the same template, use ImageCache to avoid
// redundant disk reads. Cached images stay in memory until Evict or Clear.
package imaging
