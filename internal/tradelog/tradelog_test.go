package tradelog

import (
	"bufio"
	"compress/gzip"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signal-engine/internal/types"
)

func TestAppendSignal(t *testing.T) {
	j := New(t.TempDir())
	at := time.Date(2024, 5, 6, 10, 0, 0, 0, time.UTC)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sig := &types.Signal{Symbol: "NIFTY", AsOf: int64(i), Action: types.Hold, Reasoning: []string{"mixed signals, awaiting confirmation"}}
			assert.NoError(t, j.AppendSignal(sig, at, nil))
		}(i)
	}
	wg.Wait()

	f, err := os.Open(filepath.Join(j.Dir, "signals", "2024-05-06.jsonl"))
	require.NoError(t, err)
	defer f.Close()

	lines := 0
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var e Entry
		require.NoError(t, json.Unmarshal(sc.Bytes(), &e))
		assert.Equal(t, "2024-05-06T10:00:00Z", e.Time)
		lines++
	}
	assert.Equal(t, 20, lines)
}

func TestAppendNil(t *testing.T) {
	assert.Error(t, New(t.TempDir()).AppendSignal(nil, time.Now(), nil))
}

func TestCompressOlder(t *testing.T) {
	j := New(t.TempDir())
	old := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	fresh := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, j.AppendSignal(&types.Signal{Symbol: "A"}, old, nil))
	require.NoError(t, j.AppendSignal(&types.Signal{Symbol: "B"}, fresh, nil))

	oldPath := j.path(old)
	require.NoError(t, os.Chtimes(oldPath, old, old))

	require.NoError(t, j.CompressOlder(10, fresh))

	_, err := os.Stat(oldPath)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(j.path(fresh))
	assert.NoError(t, err)

	f, err := os.Open(oldPath + ".gz")
	require.NoError(t, err)
	defer f.Close()
	gr, err := gzip.NewReader(f)
	require.NoError(t, err)
	body, err := io.ReadAll(gr)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"symbol":"A"`)
}

func TestCompressOlderMissingDir(t *testing.T) {
	j := New(filepath.Join(t.TempDir(), "nope"))
	assert.NoError(t, j.CompressOlder(1, time.Now()))
}
