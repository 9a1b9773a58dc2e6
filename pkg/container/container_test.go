package container

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestContainer_LazyAndMemoized(t *testing.T) {
	c := New()
	builds := 0
	require.NoError(t, c.Set("greeting", func(*Container) (any, error) {
		builds++
		return "hello", nil
	}))
	require.Equal(t, 0, builds, "factories must not run on registration")

	for i := 0; i < 3; i++ {
		got, err := c.Get("greeting")
		require.NoError(t, err)
		require.Equal(t, "hello", got)
	}
	require.Equal(t, 1, builds)
}

func TestContainer_FactoriesResolveDependencies(t *testing.T) {
	c := New()
	require.NoError(t, c.SetInstance("name", "Ada"))
	require.NoError(t, c.Set("greeting", func(c *Container) (any, error) {
		name, err := Lookup[string](c, "name")
		if err != nil {
			return nil, err
		}
		return "hello " + name, nil
	}))

	got, err := Lookup[string](c, "greeting")
	require.NoError(t, err)
	require.Equal(t, "hello Ada", got)

	_, err = Lookup[int](c, "greeting")
	require.Error(t, err)
}

func TestContainer_FailedBuildIsRetried(t *testing.T) {
	c := New()
	attempts := 0
	require.NoError(t, c.Set("flaky", func(*Container) (any, error) {
		attempts++
		if attempts == 1 {
			return nil, errors.New("boom")
		}
		return attempts, nil
	}))

	_, err := c.Get("flaky")
	require.Error(t, err)
	got, err := c.Get("flaky")
	require.NoError(t, err)
	require.Equal(t, 2, got)
}

func TestContainer_Errors(t *testing.T) {
	c := New()

	_, err := c.Get("missing")
	require.True(t, errors.Is(err, ErrNotFound))
	require.Panics(t, func() { c.MustGet("missing") })

	require.Error(t, c.Set("", func(*Container) (any, error) { return nil, nil }))
	require.Error(t, c.Set("nil", nil))

	require.NoError(t, c.Set("a", func(c *Container) (any, error) { return c.Get("b") }))
	require.NoError(t, c.Set("b", func(c *Container) (any, error) { return c.Get("a") }))
	_, err = c.Get("a")
	require.True(t, errors.Is(err, ErrCycle))
}

func TestContainer_ConcurrentFirstGetsShareOneBuild(t *testing.T) {
	c := New()
	var builds atomic.Int32
	require.NoError(t, c.Set("slow", func(*Container) (any, error) {
		builds.Add(1)
		time.Sleep(50 * time.Millisecond)
		return &struct{ name string }{name: "slow"}, nil
	}))

	const workers = 4
	var wg sync.WaitGroup
	results := make([]any, workers)
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = c.Get("slow")
		}(i)
	}
	wg.Wait()

	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
		require.Same(t, results[0], results[i])
	}
	require.EqualValues(t, 1, builds.Load())
}

func TestContainer_CycleDetectionIsPerCallChain(t *testing.T) {
	c := New()
	require.NoError(t, c.SetInstance("leaf", "leaf"))
	require.NoError(t, c.Set("left", func(c *Container) (any, error) { return c.Get("leaf") }))
	require.NoError(t, c.Set("right", func(c *Container) (any, error) {
		// A sibling resolving a service another branch already built is not a cycle.
		if _, err := c.Get("left"); err != nil {
			return nil, err
		}
		return c.Get("leaf")
	}))

	got, err := c.Get("right")
	require.NoError(t, err)
	require.Equal(t, "leaf", got)

	require.NoError(t, c.Set("self", func(c *Container) (any, error) { return c.Get("self") }))
	_, err = c.Get("self")
	require.ErrorIs(t, err, ErrCycle)
}

func TestContainer_NamesKeepRegistrationOrder(t *testing.T) {
	c := New()
	require.NoError(t, c.SetInstance("b", 1))
	require.NoError(t, c.SetInstance("a", 2))
	require.NoError(t, c.SetInstance("b", 3))

	require.Equal(t, []string{"b", "a"}, c.Names())
	require.True(t, c.Has("a"))
	require.False(t, c.Has("c"))
	require.Equal(t, 3, c.MustGet("b"))
}

func TestPriorityList_Order(t *testing.T) {
	l := NewPriorityList()
	l.Insert("packageRenderer_tests/templates", 0)
	l.Insert("packageRenderer_tests/templateTemplates", 1)
	l.Insert("packageRenderer_other", 0)

	require.Equal(t, []string{
		"packageRenderer_tests/templateTemplates",
		"packageRenderer_tests/templates",
		"packageRenderer_other",
	}, l.Names())
	require.Equal(t, 3, l.Len())
}

func TestPriorityList_Property(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		priorities := rapid.SliceOfN(rapid.IntRange(-3, 3), 0, 20).Draw(t, "priorities")

		l := NewPriorityList()
		index := make(map[string]int, len(priorities))
		for i, p := range priorities {
			name := string(rune('a'+i%26)) + string(rune('0'+i/26))
			index[name] = i
			l.Insert(name, p)
		}

		names := l.Names()
		if len(names) != len(priorities) {
			t.Fatalf("expected %d names, got %d", len(priorities), len(names))
		}
		for i := 1; i < len(names); i++ {
			prev, cur := index[names[i-1]], index[names[i]]
			if priorities[prev] < priorities[cur] {
				t.Fatalf("priority order violated: %v", names)
			}
			if priorities[prev] == priorities[cur] && prev > cur {
				t.Fatalf("tie order violated: %v", names)
			}
		}
	})
}
