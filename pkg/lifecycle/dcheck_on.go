//go:build !release

package lifecycle

const dcheckIsOn = true
