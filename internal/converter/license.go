package converter

import (
	officelicense "github.com/unidoc/unioffice/common/license"
	pdflicense "github.com/unidoc/unipdf/v3/common/license"
)

func applyUnidocLicense(key string) error {
	if err := pdflicense.SetMeteredKey(key); err != nil {
		return err
	}
	return officelicense.SetMeteredKey(key)
}
