package targets

import "strings"

// DiscordMessageLimit is the hard per-message ceiling of the Discord API,
// in characters.
const DiscordMessageLimit = 2000

// Chunk splits text into pieces of at most limit characters without breaking
// lines. Lines are packed greedily and joined with "\n". A line that alone
// reaches limit is flushed on its own as consecutive limit-sized slices.
//
// Joining the result with "\n" reproduces text whenever no line reached limit.
func Chunk(text string, limit int) []string {
	if text == "" || limit <= 0 {
		return nil
	}

	var (
		chunks []string
		buf    strings.Builder
		bufLen int
		has    bool
	)

	flush := func() {
		if has {
			chunks = append(chunks, buf.String())
		}
		buf.Reset()
		bufLen = 0
		has = false
	}

	for _, line := range strings.Split(text, "\n") {
		runes := []rune(line)

		if len(runes) >= limit {
			flush()
			for start := 0; start < len(runes); start += limit {
				end := min(start+limit, len(runes))
				chunks = append(chunks, string(runes[start:end]))
			}
			continue
		}

		if !has {
			buf.WriteString(line)
			bufLen = len(runes)
			has = true
			continue
		}

		if bufLen+1+len(runes) <= limit {
			buf.WriteByte('\n')
			buf.WriteString(line)
			bufLen += 1 + len(runes)
			continue
		}

		flush()
		buf.WriteString(line)
		bufLen = len(runes)
		has = true
	}
	flush()

	return chunks
}
