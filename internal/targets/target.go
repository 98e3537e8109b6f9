package targets

import "hnreport/internal/core"

var (
	_ core.Target = (*DiscordTarget)(nil)
	_ core.Target = (*FeedTarget)(nil)
	_ core.Target = (*ConsoleTarget)(nil)

	_ core.Flusher = (*FeedTarget)(nil)
)
