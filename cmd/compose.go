package cmd

import (
	"fmt"
	"math/rand"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/lmontes/melgen/constants"
	"github.com/lmontes/melgen/corpus"
	"github.com/lmontes/melgen/db"
	"github.com/lmontes/melgen/markov"
	"github.com/lmontes/melgen/midifile"
	"github.com/lmontes/melgen/model"
	"github.com/lmontes/melgen/score"
	"github.com/lmontes/melgen/session"
	"github.com/lmontes/melgen/util"
)

var composeSessionPath string

func init() {
	rootCmd.AddCommand(composeCmd)
	composeCmd.Flags().StringVar(&composeSessionPath, "session", "", "YAML session file")
	composeCmd.Flags().StringSliceVar(&composeSess.Voices, "voices", []string{"1"}, "staff/voice ids to model")
	composeCmd.Flags().IntVar(&composeSess.Order, "order", 1, "context length of the chain")
	composeCmd.Flags().IntVar(&composeSess.Steps, "steps", 50, "number of transitions to sample")
	composeCmd.Flags().Int64Var(&composeSeed, "seed", 0, "random seed (default: time-based)")
	composeCmd.Flags().IntVar(&composeSess.Tempo, "tempo", 0, "tempo in BPM (default: first score's tempo)")
	composeCmd.Flags().IntVar(&composeSess.Velocity, "velocity", constants.DefaultVelocity, "note-on velocity")
	composeCmd.Flags().StringSliceVar(&composeSess.Instruments, "instruments", nil, "instrument per voice (default: piano)")
	composeCmd.Flags().StringVarP(&composeSess.Output, "out", "o", "", "output MIDI path")
	composeCmd.Flags().StringVar(&composeSess.TablePath, "table", "", "CSV path to save the transition table")
	composeCmd.Flags().BoolVar(&composeSess.LoadTable, "load-table", false, "load the table from --table instead of building it")
	composeCmd.Flags().BoolVar(&composeSess.Preview, "preview", false, "also write a short preview MIDI")
}

var composeSess = *session.Default()
var composeSeed int64

var composeCmd = &cobra.Command{
	Use:   "compose [score files...]",
	Short: "Generates a new composition",
	Long:  `Parses scores, builds the transition table and samples a new composition to a MIDI file.`,
	Run: func(cmd *cobra.Command, args []string) {
		sess := &composeSess
		if composeSessionPath != "" {
			loaded, err := session.Load(composeSessionPath)
			cobra.CheckErr(err)
			sess = loaded
		} else {
			sess.Sources = args
			if sess.Output == "" {
				sess.Output = filepath.Join(constants.GetOutDir(), "composition.mid")
			}
			cobra.CheckErr(sess.Validate())
		}
		if cmd.Flags().Changed("seed") {
			sess.Seed = &composeSeed
		}
		cobra.CheckErr(runCompose(sess))
	},
}

func runCompose(sess *session.Session) error {
	scores, err := parseScores(sess.Sources)
	if err != nil {
		return err
	}

	var t *markov.Table
	if sess.LoadTable {
		t, err = markov.ReadCSV(sess.TablePath)
		if err != nil {
			return err
		}
		fmt.Printf("Loaded transition table %v: order %v, %v states\n", sess.TablePath, t.Order(), t.NumStates())
	} else {
		t, err = buildTable(scores, sess.Voices, sess.Order, sess.TablePath)
		if err != nil {
			return err
		}
	}

	seed := time.Now().UnixNano()
	if sess.Seed != nil {
		seed = *sess.Seed
	}
	rng := rand.New(rand.NewSource(seed))

	comp, err := t.Compose(rng, sess.Steps)
	if err != nil {
		return err
	}
	if comp.DeadEnds > 0 {
		fmt.Printf("Warning: %v sampling steps hit a dead end and repeated the previous output\n", comp.DeadEnds)
	}

	info := model.Info{Divisions: 480, Tempo: score.DefaultTempo}
	if len(scores) > 0 {
		info = scores[0].Info
	}
	tempo := sess.Tempo
	if tempo == 0 {
		tempo = info.Tempo
	}
	opts := midifile.Options{
		Divisions:   info.Divisions,
		Tempo:       tempo,
		Velocity:    uint8(sess.Velocity),
		Instruments: sess.Instruments,
		Title:       lookupTitle(sess.Sources),
	}

	util.EnsureDir(filepath.Dir(sess.Output))
	if err := midifile.WriteGroups(comp.Groups, sess.Output, opts); err != nil {
		return err
	}
	fmt.Printf("Wrote %v (%v time steps, seed %v)\n", sess.Output, len(comp.Groups), seed)

	if sess.Preview {
		previewPath := strings.TrimSuffix(sess.Output, filepath.Ext(sess.Output)) + "_preview.mid"
		if err := midifile.WritePreview(comp.Groups, previewPath, opts, constants.PreviewNotes); err != nil {
			return err
		}
		fmt.Printf("Wrote preview %v\n", previewPath)
	}
	return nil
}

func parseScores(sources []string) ([]*model.Score, error) {
	var scores []*model.Score
	for i, src := range sources {
		fmt.Printf("Parsing %v of %v scores: %v\n", i+1, len(sources), src)
		s, err := score.ParseFile(src)
		if err != nil {
			return nil, err
		}
		for _, part := range s.Parts {
			fmt.Printf("  %v: voices %v\n", part.Instrument, util.SortedKeys(part.Voices))
		}
		scores = append(scores, s)
	}
	return scores, nil
}

func buildTable(scores []*model.Score, voices []string, order int, savePath string) (*markov.Table, error) {
	streams, err := corpus.Aggregate(scores, voices)
	if err != nil {
		return nil, err
	}
	t, err := markov.Build(streams, voices, order)
	if err != nil {
		return nil, err
	}
	fmt.Printf("Built transition table: order %v, %v states, %v successors\n", t.Order(), t.NumStates(), t.NumSuccessors())
	if savePath != "" {
		util.EnsureDir(filepath.Dir(savePath))
		if err := t.WriteCSV(savePath); err != nil {
			return nil, err
		}
		fmt.Printf("Saved transition table to %v\n", savePath)
	}
	return t, nil
}

// lookupTitle fetches catalog metadata for the first source, if a metadata
// endpoint is configured.
func lookupTitle(sources []string) string {
	if len(sources) == 0 {
		return ""
	}
	names := make([]string, 0, len(sources))
	for _, src := range sources {
		names = append(names, filepath.Base(src))
	}
	metadatas, err := db.GetScoreMetadatas(names)
	if err != nil {
		fmt.Printf("Skipping metadata lookup because: %v\n", err)
		return ""
	}
	if meta, ok := metadatas[names[0]]; ok && meta.Title != "" {
		return "After " + meta.Title
	}
	return ""
}
