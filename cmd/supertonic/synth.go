package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/example/supertonic-go/internal/onnx"
	"github.com/example/supertonic-go/internal/tts"
	"github.com/example/supertonic-go/internal/voice"
	"github.com/spf13/cobra"
)

func newSynthCmd() *cobra.Command {
	var text string
	var out string
	var voiceStyle string
	var totalStep int
	var speed float64

	cmd := &cobra.Command{
		Use:   "synth",
		Short: "Synthesize text to a WAV file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			inputText, err := readSynthText(text, os.Stdin)
			if err != nil {
				return err
			}

			if voiceStyle == "" {
				voiceStyle = "F1"
			}

			runtimeCfg := onnx.RunnerConfig{
				LibraryPath: cfg.Runtime.ORTLibraryPath,
				APIVersion:  23,
			}

			sess, err := tts.InitOnce(cfg.Paths.AssetRoot, runtimeCfg)
			if err != nil {
				return fmt.Errorf("initialize synthesis session: %w", err)
			}

			facade := tts.NewFacade(sess, nil)

			step := totalStep
			if step <= 0 {
				step = cfg.TTS.DefaultTotalStep
			}

			reqSpeed := speed
			if reqSpeed <= 0 {
				reqSpeed = cfg.TTS.ClientDefaultSpeed
			}

			result, err := facade.Synthesize(cmd.Context(), tts.Request{
				Text:                   inputText,
				VoiceStyle:             voice.ID(voiceStyle),
				TotalStep:              step,
				Speed:                  float32(reqSpeed),
				SilenceDurationSeconds: cfg.TTS.SilenceSeconds,
			})
			if err != nil {
				return fmt.Errorf("synth failed: %w", err)
			}

			return writeSynthOutput(out, result.WAVBuffer, os.Stdout)
		},
	}

	cmd.Flags().StringVar(&text, "text", "", "Text to synthesize (if empty, read from stdin)")
	cmd.Flags().StringVar(&out, "out", "out.wav", "Output WAV path ('-' for stdout)")
	cmd.Flags().StringVar(&voiceStyle, "voice", "", "Voice style ID: F1, F2, M1, or M2 (default F1)")
	cmd.Flags().IntVar(&totalStep, "total-step", 0, "Denoising loop step count (default from config)")
	cmd.Flags().Float64Var(&speed, "speed", 0, "Playback speed multiplier (default from config)")

	return cmd
}

func writeSynthOutput(outPath string, wavData []byte, stdout io.Writer) error {
	if outPath == "-" {
		if stdout == nil {
			return fmt.Errorf("stdout writer is nil")
		}
		_, err := stdout.Write(wavData)
		return err
	}
	return os.WriteFile(outPath, wavData, 0o644)
}

func readSynthText(text string, stdin io.Reader) (string, error) {
	if strings.TrimSpace(text) != "" {
		return text, nil
	}

	b, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	input := strings.TrimSpace(string(b))
	if input == "" {
		return "", fmt.Errorf("either provide --text or pipe text on stdin")
	}
	return input, nil
}
