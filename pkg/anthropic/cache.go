package anthropic

// BuildCachedSystemBlocks wraps a static system prompt in a single block
// with an ephemeral cache breakpoint, so repeated turns of a conversation
// reuse the cached prefix.
func BuildCachedSystemBlocks(text, ttl string) []SystemBlock {
	return []SystemBlock{
		{
			Text:         text,
			CacheControl: &CacheControl{TTL: ttl},
		},
	}
}
