// Package transcript turns recognition results into transcript text.
package transcript

import (
	"fmt"

	"transcritor/internal/asr"
)

// LiveText renders one live window. Live windows carry no index, only the
// timestamp written by LiveWriter.
func LiveText(res asr.Result) string {
	switch res.Outcome {
	case asr.Recognized:
		return res.Text
	case asr.Unrecognized:
		return "[Fala não reconhecida]"
	default:
		return fmt.Sprintf("[Erro na requisição: %v]", res.Err)
	}
}

// PartText renders window index (zero-based) of a video.
func PartText(index int, res asr.Result) string {
	switch res.Outcome {
	case asr.Recognized:
		return res.Text
	case asr.Unrecognized:
		return fmt.Sprintf("[Parte %d não reconhecida]", index+1)
	default:
		return fmt.Sprintf("[Erro na requisição da parte %d: %v]", index+1, res.Err)
	}
}
