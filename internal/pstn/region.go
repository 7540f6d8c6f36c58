package pstn

// regionCodes maps the human-readable calling regions offered to callers onto
// partner area codes.
var regionCodes = map[string]string{
	"North America":                  "AREA_CODE_NA",
	"Europe":                         "AREA_CODE_EU",
	"Asia, excluding Mainland China": "AREA_CODE_AS",
	"Japan":                          "AREA_CODE_JP",
	"India":                          "AREA_CODE_IN",
	"Mainland China":                 "AREA_CODE_CN",
}

const defaultRegionCode = "AREA_CODE_NA"

// RegionCode resolves a region label to its partner area code. Unknown labels
// fall back to North America rather than failing the call.
func RegionCode(region string) string {
	if code, ok := regionCodes[region]; ok {
		return code
	}
	return defaultRegionCode
}
