package session

import (
	"github.com/cracros-cyber/Tradutor-Inteligente-IA/pkg/language"
)

// detectionOutcome describes what reconciling a detected language did to
// the selector pair. Used for logging and metrics.
type detectionOutcome string

const (
	// outcomeNoop: empty detection (ambiguous or gibberish input).
	outcomeNoop detectionOutcome = "noop"
	// outcomeUnchanged: detection matches the current source.
	outcomeUnchanged detectionOutcome = "unchanged"
	// outcomeAdopted: source switched to the detected language.
	outcomeAdopted detectionOutcome = "adopted"
	// outcomeSwapped: detection matched the target, so the prior source
	// moved into the target slot before the source switched.
	outcomeSwapped detectionOutcome = "swapped"
	// outcomeUnsupported: detection is outside the supported set.
	outcomeUnsupported detectionOutcome = "unsupported"
)

// reconcile folds a freshly detected language code into the current
// source/target selection. Regional variants count as their base language
// ("pt-BR" detects as "pt"). The returned pair is never equal: when the
// detection collides with the target, the prior source takes the target
// slot. On noop and unsupported outcomes the pair is returned unchanged.
func reconcile(detected string, source, target language.Code) (language.Code, language.Code, detectionOutcome) {
	code := language.Normalize(detected)
	if code == "" {
		return source, target, outcomeNoop
	}
	if !language.IsSupported(code) {
		return source, target, outcomeUnsupported
	}

	if code == source {
		return source, target, outcomeUnchanged
	}
	if code == target {
		return code, source, outcomeSwapped
	}
	return code, target, outcomeAdopted
}
