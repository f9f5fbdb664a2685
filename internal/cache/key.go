package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"strconv"

	"github.com/cellarscan/cellarscan/constants"
)

const keyPrefix = "ocr_"

// Key derives a content-addressable cache key for an image reference.
//
// Remote URLs hash the URL string itself. Local files hash the raw file
// bytes together with the last-modified time, so editing a file in place
// invalidates its own cache entry. Hashing never fails: when the file
// cannot be read the raw reference string is hashed instead, which keeps
// the pipeline alive and simply yields a key that will miss.
func Key(imageRef string) string {
	if constants.IsRemoteRef(imageRef) {
		return keyPrefix + hashString(imageRef)
	}

	data, err := os.ReadFile(imageRef)
	if err != nil {
		return keyPrefix + hashString(imageRef)
	}
	info, err := os.Stat(imageRef)
	if err != nil {
		return keyPrefix + hashString(imageRef)
	}

	h := sha256.New()
	h.Write(data)
	h.Write([]byte(strconv.FormatInt(info.ModTime().UnixNano(), 10)))
	return keyPrefix + hex.EncodeToString(h.Sum(nil))
}

func hashString(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
