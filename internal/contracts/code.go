package contracts

import "strings"

// CodeWidth is the zero-padded width of numeric instrument codes
const CodeWidth = 6

// NormalizeCode trims the code and left-pads numeric codes to CodeWidth
// 예: "1" → "000001", "600519" → "600519", "600519.0" → "600519"
func NormalizeCode(raw string) string {
	code := strings.TrimSpace(raw)
	if code == "" {
		return ""
	}
	code = trimIntegralFraction(code)
	if !isDigits(code) || len(code) >= CodeWidth {
		return code
	}
	return strings.Repeat("0", CodeWidth-len(code)) + code
}

// trimIntegralFraction drops a zero fraction from float-formatted codes
func trimIntegralFraction(code string) string {
	i := strings.IndexByte(code, '.')
	if i <= 0 || i == len(code)-1 {
		return code
	}
	if !isDigits(code[:i]) || strings.Trim(code[i+1:], "0") != "" {
		return code
	}
	return code[:i]
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
