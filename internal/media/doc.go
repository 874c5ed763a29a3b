// Package media plays local mp3 files through the system speaker and reads their ID3 tags.
//
// [Speaker] implements session.Media with gopxl/beep. Each loaded file becomes a track resource that
// owns its decoder and file handle; closing it detaches the stream from the mixer. The speaker is
// initialised once, on first start, at the sample rate of the first file. Later files are resampled.
//
// [ReadTags] uses dhowden/tag to fill title, artist and genre from the file itself, for listing a
// selection before it has been analysed.
package media
