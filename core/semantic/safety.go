package semantic

import (
	"regexp"

	"github.com/FocuswithJustin/versetag/core/verse"
)

// Keyword backstops for content flags. Case-insensitive whole-word matches;
// the semantic layer handles subtler cases, these catch the obvious ones.
var (
	reViolence = regexp.MustCompile(`(?i)\b(slay|sword|blood|war|kill|stone|smite|spear|battle|strike)\b`)
	reSexual   = regexp.MustCompile(`(?i)\b(adulter|fornication|prostitut|lust|naked|whore|harlot)\b`)
	reRebuke   = regexp.MustCompile(`(?i)\b(woe|hypocrite|wrath|abomination|rebuke|condemn)\b`)
	reSlavery  = regexp.MustCompile(`(?i)\b(slave|bondservant|slave-master|slaves|bondservants)\b`)
)

// SafetyFlags runs the four keyword detectors over raw verse text. It is
// independent of the embedding path and always runs.
func SafetyFlags(text string) verse.SafetyFlags {
	violence := reViolence.MatchString(text)
	sexual := reSexual.MatchString(text)
	return verse.SafetyFlags{
		Violence:    violence,
		Sexual:      sexual,
		Slavery:     reSlavery.MatchString(text),
		HarshRebuke: reRebuke.MatchString(text),
		KidSafe:     !(violence || sexual),
	}
}
