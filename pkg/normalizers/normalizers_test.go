package normalizers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFold(t *testing.T) {
	assert.Equal(t, "dha phase 5", Fold("  DHA   Phase 5 "))
	assert.Equal(t, "", Fold("   "))
	assert.Equal(t, "5 marla", Fold("5 Marla"))
}

func TestNormalizePhone(t *testing.T) {
	assert.Equal(t, "923001234567", NormalizePhone("+92 (300) 123-4567"))
	assert.Equal(t, "", NormalizePhone("no digits"))
}

func TestApplyChain(t *testing.T) {
	assert.Equal(t, "hello world", ApplyChain("  Hello   World ", "fold"))
	// unknown normalizers are a no-op
	assert.Equal(t, "x", ApplyChain("x", "does_not_exist"))
}
