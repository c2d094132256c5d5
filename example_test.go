// SPDX-License-Identifier: EPL-2.0

package audioloader_test

import (
	"context"
	"fmt"

	"github.com/ik5/audioloader"
	"github.com/ik5/audioloader/docarray"
)

func ExampleLoader_LoadAudio() {
	silence := func(_ string, rate int) ([]float32, int, error) {
		return make([]float32, rate/10), rate, nil
	}

	loader, err := audioloader.New(audioloader.Config{TargetSampleRate: 16000},
		audioloader.WithDecodeFunc(silence))
	if err != nil {
		fmt.Println(err)
		return
	}

	docs := docarray.DocumentArray{
		{ID: "speech", MimeType: "audio/mpeg", URI: "speech.mp3"},
		{ID: "cover", MimeType: "image/png", URI: "cover.png"},
	}
	if err := loader.LoadAudio(context.Background(), docs, nil); err != nil {
		fmt.Println(err)
		return
	}

	for _, d := range docs {
		fmt.Println(d.ID, len(d.Blob), d.Tags[audioloader.SampleRateTag])
	}
	// Output:
	// speech 1600 16000
	// cover 0 <nil>
}

func ExampleNew_unsupportedType() {
	_, err := audioloader.New(audioloader.Config{AudioTypes: []string{"flac"}})
	fmt.Println(err)
	// Output: audio type not supported: "flac"
}
