package badger

import "fmt"

// Key prefixes for different data types
const (
	organizationPrefix = "orgrec"
	organizationOrder  = "orgord"
	detailPrefix       = "detrec"
	textEntryPrefix    = "txtrec"
	snapshotKey        = "snpdig"
)

// makeOrganizationKey generates a key for a summary record by OGRN.
func makeOrganizationKey(ogrn string) []byte {
	return []byte(fmt.Sprintf("%s:%s", organizationPrefix, ogrn))
}

// makeOrganizationOrderKey generates the key holding the dataset-order OGRN list.
func makeOrganizationOrderKey() []byte {
	return []byte(organizationOrder)
}

// makeDetailKey generates a key for a cached detail record by OGRN.
func makeDetailKey(ogrn string) []byte {
	return []byte(fmt.Sprintf("%s:%s", detailPrefix, ogrn))
}

// makeTextEntryKey generates a key for a text index entry by OGRN.
func makeTextEntryKey(ogrn string) []byte {
	return []byte(fmt.Sprintf("%s:%s", textEntryPrefix, ogrn))
}

// makeSnapshotKey generates the key holding the dataset snapshot digest.
func makeSnapshotKey() []byte {
	return []byte(snapshotKey)
}
