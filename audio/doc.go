// SPDX-License-Identifier: EPL-2.0

// Package audio defines the streaming side of sample ingestion: a Source
// interface for decoded PCM streams, a Decoder registry the format
// subpackages plug into, and small pipeline stages (resampling, mono
// downmix) for preparing material before it is loaded into mixer buffers.
//
// Sources produce interleaved float32 samples in [-1, 1]. Streams are
// pull-driven: ReadSamples fills as much of dst as it can and reports
// io.EOF when finished.
package audio
