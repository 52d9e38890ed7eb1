package bridge

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// feed returns the indices of bytes for which Feed reported a match.
func feed(lb *LineBuffer, s string) []int {
	var matches []int
	for i := 0; i < len(s); i++ {
		if lb.Feed(s[i]) {
			matches = append(matches, i)
		}
	}
	return matches
}

func TestLineBufferMatch(t *testing.T) {
	home, root := DefaultPrompts[0], DefaultPrompts[1]
	testCases := []struct {
		name    string
		mode    MatchMode
		input   string
		matches []int
	}{
		{"prompt line", MatchExact, home + "\n", []int{len(home) - 1, len(home)}},
		{"alternate prompt line", MatchExact, root + "\n", []int{len(root) - 1, len(root)}},
		{"prompt waiting for input", MatchExact, "login ok\n" + root, []int{len("login ok\n") + len(root) - 1}},
		{"prompt followed by input", MatchExact, home + "ls\n", []int{len(home) - 1}},
		{"prefixed prompt", MatchExact, "x" + home + "\n", nil},
		{"prompt without trailing space", MatchExact, strings.TrimSpace(home) + "\n", nil},
		{"prompt with carriage return", MatchExact, home + "\r\n", []int{len(home) - 1}},
		{"trim mode with carriage return", MatchTrimSpace, home + "\r\n", []int{len(home) - 2, len(home) - 1, len(home), len(home) + 1}},
		{"unrelated lines", MatchExact, "U-Boot 1.1.4\nStarting kernel ...\n", nil},
		{"empty lines", MatchExact, "\n\n\n", nil},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			lb := NewLineBuffer(DefaultBufferSize, DefaultPrompts, tc.mode)
			require.Equal(t, tc.matches, feed(lb, tc.input))
		})
	}
}

func TestLineBufferLastMatch(t *testing.T) {
	lb := NewLineBuffer(DefaultBufferSize, DefaultPrompts, MatchExact)
	require.Empty(t, lb.LastMatch())
	feed(lb, DefaultPrompts[0]+"\n")
	require.Equal(t, DefaultPrompts[0], lb.LastMatch())
	feed(lb, DefaultPrompts[1])
	require.Equal(t, DefaultPrompts[1], lb.LastMatch())
	feed(lb, "\nnoise\n")
	require.Equal(t, DefaultPrompts[1], lb.LastMatch())
}

func TestLineBufferOverflow(t *testing.T) {
	lb := NewLineBuffer(16, DefaultPrompts, MatchExact)
	long := strings.Repeat("a", 40)
	for i := 0; i < len(long); i++ {
		require.False(t, lb.Feed(long[i]))
		require.True(t, lb.Len() < lb.Cap())
	}
	require.Equal(t, 2, lb.Overflows())
	require.Equal(t, strings.Repeat("a", 8), lb.String())

	require.Empty(t, feed(lb, "\n"))
	require.Zero(t, lb.Len())

	lb = NewLineBuffer(DefaultBufferSize, DefaultPrompts, MatchExact)
	require.Empty(t, feed(lb, strings.Repeat("z", 70)+"\n"))
	require.Equal(t, 1, lb.Overflows())
	require.Equal(t, []int{len(DefaultPrompts[0])}, feed(lb, DefaultPrompts[0]+"\n")[1:])
}

func TestLineBufferReset(t *testing.T) {
	lb := NewLineBuffer(0, DefaultPrompts, MatchExact)
	require.Equal(t, DefaultBufferSize, lb.Cap())
	feed(lb, "root@Micro")
	require.Equal(t, "root@Micro", lb.String())
	lb.Reset()
	require.Zero(t, lb.Len())
	require.Empty(t, feed(lb, "mark:~# "))
}

func TestLineBufferMatchesIffLineIsPrompt(t *testing.T) {
	pieces := []string{
		DefaultPrompts[0], DefaultPrompts[1],
		"root@Micromark:~#", "root@", "~# ", "# ", "\r", "ls -l", "",
	}
	rnd := rand.New(rand.NewSource(1))
	for iter := 0; iter < 200; iter++ {
		var lines []string
		for n := rnd.Intn(6) + 1; n > 0; n-- {
			var line string
			for k := rnd.Intn(3) + 1; k > 0; k-- {
				line += pieces[rnd.Intn(len(pieces))]
			}
			lines = append(lines, line)
		}
		input := strings.Join(lines, "\n")

		lb := NewLineBuffer(DefaultBufferSize, DefaultPrompts, MatchExact)
		var since string
		for i := 0; i < len(input); i++ {
			b := input[i]
			expect := false
			if b == '\n' {
				_, expect = DefaultPrompts.Match(since, MatchExact)
				since = ""
			} else {
				since += string(b)
				_, expect = DefaultPrompts.Match(since, MatchExact)
			}
			require.Equalf(t, expect, lb.Feed(b), "input %q at %d", input, i)
		}
	}
}

func TestPromptSetMatch(t *testing.T) {
	prompt, ok := DefaultPrompts.Match("root@Micromark:/# ", MatchExact)
	require.True(t, ok)
	require.Equal(t, "root@Micromark:/# ", prompt)

	_, ok = DefaultPrompts.Match("root@Micromark:/#", MatchExact)
	require.False(t, ok)

	prompt, ok = DefaultPrompts.Match("root@Micromark:/#\r", MatchTrimSpace)
	require.True(t, ok)
	require.Equal(t, "root@Micromark:/# ", prompt)

	_, ok = PromptSet(nil).Match("", MatchExact)
	require.False(t, ok)

	require.Equal(t, "exact", MatchExact.String())
	require.Equal(t, "trim-space", MatchTrimSpace.String())
}
