package strutil

// CmpFold compares two ASCII strings case-insensitively.
func CmpFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}

	for i := range a {
		if a[i]|0x20 != b[i]|0x20 {
			return false
		}
	}

	return true
}

// TrimWS strips leading and trailing SP and HT, the only whitespace allowed
// around header field values.
func TrimWS(str string) string {
	begin := 0
	for begin < len(str) && (str[begin] == ' ' || str[begin] == '\t') {
		begin++
	}

	end := len(str)
	for end > begin && (str[end-1] == ' ' || str[end-1] == '\t') {
		end--
	}

	return str[begin:end]
}
