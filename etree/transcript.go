// Package etree reads and writes episode transcripts as SceneList XML
// documents, one file per episode:
//
//	<SceneList title="Pilot">
//	    <Scene deleted="1">
//	        <Quote>
//	            <Speaker annotated="true">{Michael} and {Dwight}</Speaker>
//	            <Text>Hey!</Text>
//	            <Character id="michael">Michael</Character>
//	            <Character id="dwight">Dwight</Character>
//	        </Quote>
//	    </Scene>
//	</SceneList>
package etree

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"github.com/fwojciec/officequotes"
)

// Filename returns the transcript file name of an episode, e.g. "1-01.xml".
func Filename(season, episode int) string {
	return fmt.Sprintf("%d-%02d.xml", season, episode)
}

// Decode parses a SceneList document. The episode coordinate is not part
// of the document and is left zero.
func Decode(r io.Reader) (*officequotes.Episode, error) {
	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(r); err != nil {
		return nil, officequotes.Errorf(officequotes.EINVALID, "parsing transcript XML: %v", err)
	}

	root := doc.Root()
	if root == nil || root.Tag != "SceneList" {
		return nil, officequotes.Errorf(officequotes.EINVALID, "transcript root must be SceneList")
	}

	ep := &officequotes.Episode{
		Title:       root.SelectAttrValue("title", ""),
		Description: root.SelectAttrValue("description", ""),
		Scenes:      []officequotes.Scene{},
	}
	for i, sceneEl := range root.SelectElements("Scene") {
		scene, err := decodeScene(sceneEl)
		if err != nil {
			return nil, fmt.Errorf("scene %d: %w", i+1, err)
		}
		ep.Scenes = append(ep.Scenes, scene)
	}
	return ep, nil
}

func decodeScene(el *etree.Element) (officequotes.Scene, error) {
	scene := officequotes.Scene{Quotes: []officequotes.Quote{}}
	if v := el.SelectAttrValue("deleted", ""); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return scene, officequotes.Errorf(officequotes.EINVALID, "invalid deleted scene number %q", v)
		}
		scene.Deleted = n
	}
	for i, quoteEl := range el.SelectElements("Quote") {
		q, err := decodeQuote(quoteEl)
		if err != nil {
			return scene, fmt.Errorf("quote %d: %w", i+1, err)
		}
		scene.Quotes = append(scene.Quotes, q)
	}
	return scene, nil
}

func decodeQuote(el *etree.Element) (officequotes.Quote, error) {
	var q officequotes.Quote

	speaker := el.SelectElement("Speaker")
	text := el.SelectElement("Text")
	if speaker == nil || text == nil {
		return q, officequotes.Errorf(officequotes.EINVALID, "quote requires Speaker and Text")
	}
	q.Speaker = strings.TrimSpace(speaker.Text())
	q.Text = strings.TrimSpace(text.Text())
	if q.Speaker == "" {
		return q, officequotes.Errorf(officequotes.EINVALID, "empty speaker")
	}
	q.IsAnnotated = speaker.SelectAttrValue("annotated", "false") == "true"
	q.Deleted = el.SelectAttrValue("deleted", "false") == "true"

	characters := el.SelectElements("Character")
	if q.IsAnnotated {
		q.Characters = make(map[string]string, len(characters))
		for _, c := range characters {
			id := c.SelectAttrValue("id", "")
			if id == "" {
				return q, officequotes.Errorf(officequotes.EINVALID, "character without id")
			}
			q.Characters[id] = strings.TrimSpace(c.Text())
		}
		return q, nil
	}

	switch len(characters) {
	case 0:
	case 1:
		q.Character = characters[0].SelectAttrValue("id", "")
	default:
		return q, officequotes.Errorf(officequotes.EINVALID, "unannotated quote with %d characters", len(characters))
	}
	return q, nil
}

// Encode writes ep as an indented SceneList document.
func Encode(w io.Writer, ep *officequotes.Episode) error {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("SceneList")
	if ep.Title != "" {
		root.CreateAttr("title", ep.Title)
	}
	if ep.Description != "" {
		root.CreateAttr("description", ep.Description)
	}

	for _, scene := range ep.Scenes {
		sceneEl := root.CreateElement("Scene")
		if scene.Deleted > 0 {
			sceneEl.CreateAttr("deleted", strconv.Itoa(scene.Deleted))
		}
		for _, q := range scene.Quotes {
			encodeQuote(sceneEl.CreateElement("Quote"), q)
		}
	}

	doc.Indent(4)
	_, err := doc.WriteTo(w)
	return err
}

func encodeQuote(el *etree.Element, q officequotes.Quote) {
	if q.Deleted {
		el.CreateAttr("deleted", "true")
	}
	speaker := el.CreateElement("Speaker")
	speaker.SetText(q.Speaker)
	el.CreateElement("Text").SetText(q.Text)

	if q.IsAnnotated {
		speaker.CreateAttr("annotated", "true")
		for _, id := range q.CharacterIDs() {
			c := el.CreateElement("Character")
			c.CreateAttr("id", id)
			c.SetText(q.Characters[id])
		}
		return
	}
	if q.Character != "" {
		el.CreateElement("Character").CreateAttr("id", q.Character)
	}
}

// Compile-time interface verification.
var _ officequotes.CorpusLoader = (*CorpusLoader)(nil)

// CorpusLoader loads a corpus from a directory of transcript files named
// by Filename. Episodes without a file are left missing.
type CorpusLoader struct {
	dir string
}

// NewCorpusLoader creates a CorpusLoader for dir.
func NewCorpusLoader(dir string) *CorpusLoader {
	return &CorpusLoader{dir: dir}
}

func (l *CorpusLoader) LoadCorpus(ctx context.Context) (officequotes.Corpus, error) {
	c := officequotes.NewCorpus()
	for season := 1; season <= officequotes.SeasonCount; season++ {
		for episode := 1; episode <= officequotes.EpisodeCount(season); episode++ {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			ep, err := l.readEpisode(season, episode)
			if err != nil {
				return nil, err
			}
			if ep == nil {
				continue
			}
			if err := c.Set(ep); err != nil {
				return nil, err
			}
		}
	}
	return c, nil
}

func (l *CorpusLoader) readEpisode(season, episode int) (*officequotes.Episode, error) {
	path := filepath.Join(l.dir, Filename(season, episode))
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	defer f.Close()

	ep, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	ep.SeasonNumber = season
	ep.EpisodeNumber = episode
	return ep, nil
}
