package common

import "strings"

// Notification event statuses stored in the notification_event table.
const (
	EventPending = "Pending"
	EventSent    = "Sent"
	EventFailed  = "Failed"
)

// ISO 3166-1 alpha-2 country codes.
var countryCodes = func() map[string]struct{} {
	codes := strings.Fields(`
		AD AE AF AG AI AL AM AO AQ AR AS AT AU AW AX AZ
		BA BB BD BE BF BG BH BI BJ BL BM BN BO BQ BR BS BT BV BW BY BZ
		CA CC CD CF CG CH CI CK CL CM CN CO CR CU CV CW CX CY CZ
		DE DJ DK DM DO DZ EC EE EG EH ER ES ET
		FI FJ FK FM FO FR GA GB GD GE GF GG GH GI GL GM GN GP GQ GR GS GT GU GW GY
		HK HM HN HR HT HU ID IE IL IM IN IO IQ IR IS IT
		JE JM JO JP KE KG KH KI KM KN KP KR KW KY KZ
		LA LB LC LI LK LR LS LT LU LV LY
		MA MC MD ME MF MG MH MK ML MM MN MO MP MQ MR MS MT MU MV MW MX MY MZ
		NA NC NE NF NG NI NL NO NP NR NU NZ OM
		PA PE PF PG PH PK PL PM PN PR PS PT PW PY QA
		RE RO RS RU RW SA SB SC SD SE SG SH SI SJ SK SL SM SN SO SR SS ST SV SX SY SZ
		TC TD TF TG TH TJ TK TL TM TN TO TR TT TV TW TZ
		UA UG UM US UY UZ VA VC VE VG VI VN VU WF WS YE YT ZA ZM ZW
	`)
	m := make(map[string]struct{}, len(codes))
	for _, c := range codes {
		m[c] = struct{}{}
	}
	return m
}()

// IsCountryCode reports whether s is a known ISO 3166-1 alpha-2 code.
func IsCountryCode(s string) bool {
	_, ok := countryCodes[s]
	return ok
}

// IsCpvCode reports whether s has the shape of a CPV code: exactly 8 digits.
// The optional "-N" check digit suffix is not accepted; callers normalize
// feed values before validation.
func IsCpvCode(s string) bool {
	if len(s) != 8 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// CpvDivision returns the 2-digit division prefix of a CPV code.
func CpvDivision(s string) string {
	if len(s) < 2 {
		return s
	}
	return s[:2]
}
