package fsx

import "os"

func Exists(file string) bool {
	if _, err := os.Stat(file); err != nil {
		return false
	}
	return true
}

func ExistsDir(dir string) bool {
	fi, err := os.Stat(dir)
	if err != nil {
		return false
	}
	return fi.IsDir()
}
