package main_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	main "github.com/fwojciec/officequotes/cmd/officequotes"
	"github.com/fwojciec/officequotes/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pilotXML = `<SceneList title="Pilot">
    <Scene>
        <Quote>
            <Speaker>Michael</Speaker>
            <Text>All right Jim.</Text>
            <Character id="michael"/>
        </Quote>
        <Quote>
            <Speaker>Jim</Speaker>
            <Text>Oh, I told you.</Text>
            <Character id="jim"/>
        </Quote>
        <Quote>
            <Speaker>Michael</Speaker>
            <Text>So what?</Text>
            <Character id="michael"/>
        </Quote>
    </Scene>
</SceneList>
`

// run executes the CLI against a database in dir.
func run(t *testing.T, dbPath string, args ...string) (string, error) {
	t.Helper()
	m := main.NewMain()
	m.DBPath = dbPath
	var stdout, stderr bytes.Buffer
	err := m.Run(context.Background(), append([]string{"--log-level", "error"}, args...), &stdout, &stderr)
	return stdout.String(), err
}

// Story: From transcripts to a published tree
// Transcripts are imported into the database, published, and read back as a client

func TestMain_Run_ImportBuildAndBrowse(t *testing.T) {
	t.Parallel()

	// Given a transcript directory with the pilot
	dir := t.TempDir()
	transcripts := filepath.Join(dir, "transcripts")
	require.NoError(t, os.MkdirAll(transcripts, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(transcripts, etree.Filename(1, 1)), []byte(pilotXML), 0644))
	dbPath := filepath.Join(dir, "test.db")
	tree := filepath.Join(dir, "json")

	// When I import it
	out, err := run(t, dbPath, "import", transcripts)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 1 episodes, 1 scenes, 3 quotes")

	// Then stats reflect the database
	out, err = run(t, dbPath, "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "Seasons:  9")
	assert.Contains(t, out, "Episodes: 1")
	assert.Contains(t, out, "Quotes:   3")

	// When I publish the tree with the full corpus
	out, err = run(t, dbPath, "build", "--dir", tree, "--full")
	require.NoError(t, err)
	assert.Contains(t, out, "Published 1 episodes")

	// Then the episode can be browsed from the tree
	out, err = run(t, dbPath, "episode", "1", "1", "--dir", tree, "--preload")
	require.NoError(t, err)
	assert.Contains(t, out, "S01E01  Pilot")
	assert.Contains(t, out, "1 scenes")
	assert.Contains(t, out, "*  1. Pilot")

	// And characters are ranked by appearances
	out, err = run(t, dbPath, "characters", "--dir", tree)
	require.NoError(t, err)
	assert.Regexp(t, `(?s)1\. michael.*2\. jim`, out)

	// And the published data.json counts the same
	out, err = run(t, dbPath, "stats", "--data", filepath.Join(tree, "data.json"))
	require.NoError(t, err)
	assert.Contains(t, out, "Quotes:   3")
}

func TestMain_Run_ImportDataFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	data := filepath.Join(dir, "data.json")
	require.NoError(t, os.WriteFile(data, []byte(`[[{"title":"Pilot","seasonNumber":1,"episodeNumber":1,"scenes":[]}]]`), 0644))

	out, err := run(t, filepath.Join(dir, "test.db"), "import", data)

	require.NoError(t, err)
	assert.Contains(t, out, "Imported 1 episodes, 0 scenes, 0 quotes")
}

func TestMain_Run_EpisodeValidatesCoordinate(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	_, err := run(t, filepath.Join(dir, "test.db"), "episode", "1", "7", "--dir", dir)

	assert.Error(t, err)
}

func TestMain_Run_ServeStopsWithContext(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	m := main.NewMain()
	m.DBPath = filepath.Join(dir, "test.db")
	var stdout, stderr bytes.Buffer

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := m.Run(ctx, []string{"serve", "--addr", "127.0.0.1:0"}, &stdout, &stderr)

	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "Listening on http://127.0.0.1:")
}

func TestMain_Run_DataFileSkipsDatabase(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	data := filepath.Join(dir, "data.json")
	require.NoError(t, os.WriteFile(data, []byte(`[[{"title":"Pilot","seasonNumber":1,"episodeNumber":1,"scenes":[{"quotes":[{"speaker":"Jim","text":"Hi"}]}]}]]`), 0644))
	dbPath := filepath.Join(dir, "unused.db")

	out, err := run(t, dbPath, "stats", "--data", data)
	require.NoError(t, err)
	assert.Contains(t, out, "Quotes:   1")

	out, err = run(t, dbPath, "build", "--data", data, "--dir", filepath.Join(dir, "json"))
	require.NoError(t, err)
	assert.Contains(t, out, "Published 1 episodes")

	m := main.NewMain()
	m.DBPath = dbPath
	var stdout, stderr bytes.Buffer
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, m.Run(ctx, []string{"serve", "--addr", "127.0.0.1:0", "--data", data}, &stdout, &stderr))

	assert.NoFileExists(t, dbPath)
	assert.Nil(t, m.DB)
}
