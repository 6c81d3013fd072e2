package uuid

import (
	"crypto/rand"
	"fmt"
)

// MakeV4 generates a random V4 UUID
func MakeV4() (string, error) {
	u := [16]byte{}
	_, err := rand.Read(u[:])
	if err != nil {
		return "", err
	}
	// version 4, variant 10xx
	u[6] = (u[6] & 0x0f) | 0x40
	u[8] = (u[8] & 0x3f) | 0x80
	return fmt.Sprintf("%x-%x-%x-%x-%x", u[0:4], u[4:6], u[6:8], u[8:10], u[10:]), nil
}

// MustMakeV4 generates a random V4 UUID and panics on fail
func MustMakeV4() string {
	id, err := MakeV4()
	if err != nil {
		panic(err)
	}
	return id
}
