//go:build checked

package array

const boundsChecked = true
