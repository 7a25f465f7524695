package geo

import "strings"

// TaiwanRegions is the ordered list of administrative regions used as
// partition keys. The order is the fallback search order when an address
// names none of them.
var TaiwanRegions = []string{
	"臺北市", "新北市", "桃園市", "臺中市", "臺南市", "高雄市",
	"基隆市", "新竹市", "新竹縣", "苗栗縣", "彰化縣", "南投縣",
	"雲林縣", "嘉義市", "嘉義縣", "屏東縣", "宜蘭縣", "花蓮縣",
	"臺東縣", "澎湖縣", "金門縣", "連江縣",
}

// LookupPartitions returns the single region named in address (the first
// match in regions order) or, when none matches, a copy of the full list.
// Matching is a plain substring test with no normalization.
func LookupPartitions(address string, regions []string) []string {
	if address != "" {
		for _, r := range regions {
			if r != "" && strings.Contains(address, r) {
				return []string{r}
			}
		}
	}
	all := make([]string, len(regions))
	copy(all, regions)
	return all
}
