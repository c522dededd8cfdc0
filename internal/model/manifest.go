package model

import "fmt"

type Manifest struct {
	Repo  string      `json:"repo"`
	Files []ModelFile `json:"files"`
}

type ModelFile struct {
	Filename  string `json:"filename"`
	Revision  string `json:"revision"`
	SHA256    string `json:"sha256"`
	LocalPath string `json:"local_path,omitempty"` // Override local save path (defaults to Filename).
}

const assetRevision = "main"

// PinnedManifest returns the expected asset layout for repo: tts.json, the
// unicode indexer table, the four quantized ONNX graphs, and the four voice
// style files. No SHA256 is pinned in source: Download takes each checksum
// from the lock manifest or resolves it from repo metadata.
func PinnedManifest(repo string) (Manifest, error) {
	switch repo {
	case "example/supertonic-tts-assets":
		files := []ModelFile{
			{Filename: "tts.json", Revision: assetRevision},
			{Filename: "unicode_indexer.json", Revision: assetRevision},
			{Filename: "duration_predictor_quant.onnx", Revision: assetRevision},
			{Filename: "text_encoder_quant.onnx", Revision: assetRevision},
			{Filename: "vector_estimator_quant.onnx", Revision: assetRevision},
			{Filename: "vocoder_quant.onnx", Revision: assetRevision},
		}
		files = append(files, VoiceManifest().Files...)

		return Manifest{Repo: repo, Files: files}, nil
	default:
		return Manifest{}, fmt.Errorf("no pinned manifest for repo %q", repo)
	}
}

const voiceRepo = "example/supertonic-tts-assets"

// VoiceManifest returns the manifest entries for the four closed-set voice
// style files, each holding a style_ttl/style_dp conditioning pair.
func VoiceManifest() Manifest {
	voices := []string{"F1", "F2", "M1", "M2"}

	files := make([]ModelFile, len(voices))
	for i, v := range voices {
		files[i] = ModelFile{
			Filename: "voice_styles/" + v + ".json",
			Revision: assetRevision,
		}
	}

	return Manifest{Repo: voiceRepo, Files: files}
}
