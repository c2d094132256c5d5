// SPDX-License-Identifier: EPL-2.0

// Package audioloader is a document pipeline stage that decodes the audio
// files referenced by a batch of documents.
//
// A Loader is built once from a Config and then applied to any number of
// batches:
//
//	loader, err := audioloader.New(audioloader.Config{
//	    AudioTypes:       []string{"mp3", "wav"},
//	    TargetSampleRate: 22050,
//	})
//	if err != nil {
//	    // unsupported audio type or bad sample rate
//	}
//
//	docs := docarray.DocumentArray{docarray.NewDocument("speech.wav")}
//	if err := loader.LoadAudio(ctx, docs, nil); err != nil {
//	    // decode failure; documents before the failing one are loaded
//	}
//	// docs[0].Blob holds mono float32 samples at 22050 Hz and
//	// docs[0].Tags["sample_rate"] == 22050.
//
// # Selection
//
// A document is decoded when its MIME type belongs to one of the configured
// audio types and its URI is set:
//
//	mp3 -> audio/mpeg
//	wav -> audio/x-wav, audio/wav
//
// Which documents of a nested batch are looked at is controlled by the
// access path ("r" for the roots, "c" for chunks, ...), see
// docarray.DocumentArray.TraverseFlat. It can be overridden per call with
// the "access_paths" parameter.
//
// # Decoding
//
// The default decoder is decode.Decoder, which identifies the container by
// its content, mixes to mono and resamples. Any function with the DecodeFunc
// signature can be plugged in with WithDecodeFunc.
package audioloader
