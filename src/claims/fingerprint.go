package claims

import (
	"fmt"

	"github.com/OneOfOne/xxhash"
	"github.com/stake-plus/claimcheck/src/search"
)

// Fingerprint hashes the analysis inputs. Equal claims and result lists
// always share a fingerprint.
func Fingerprint(claim string, results []search.Result) string {
	h := xxhash.NewS64(0)
	_, _ = h.Write([]byte(claim))
	for _, r := range results {
		_, _ = h.Write([]byte("\x00" + r.Title + "\x1f" + r.URL + "\x1f" + r.Snippet))
	}
	return fmt.Sprintf("%016x", h.Sum64())
}
