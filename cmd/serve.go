package cmd

import (
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/bep/debounce"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/spf13/cobra"

	"github.com/lmontes/melgen/markov"
	"github.com/lmontes/melgen/model"
)

var (
	serveTablePath string
	serveAddr      string

	tableMu    sync.RWMutex
	serveTable *markov.Table
)

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveTablePath, "table", "", "persisted transition table to serve from")
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "listen address")
	serveCmd.MarkFlagRequired("table")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves compositions over HTTP",
	Long:  `Serves compositions sampled from a persisted transition table.`,
	Run: func(cmd *cobra.Command, args []string) {
		serve()
	},
}

func reloadTable() {
	t, err := markov.ReadCSV(serveTablePath)
	if err != nil {
		fmt.Printf("Table reload failed: %v\n", err)
		return
	}
	tableMu.Lock()
	serveTable = t
	tableMu.Unlock()
	fmt.Printf("Loaded table %v: order %v, %v states\n", serveTablePath, t.Order(), t.NumStates())
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(model.ErrorResponse{Error: msg})
}

func handleCompose(w http.ResponseWriter, r *http.Request) {
	var input model.ComposeRequestBody
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "could not unmarshal request body: "+err.Error())
		return
	}
	if input.Steps <= 0 {
		input.Steps = 50
	}
	seed := time.Now().UnixNano()
	if input.Seed != nil {
		seed = *input.Seed
	}

	tableMu.RLock()
	t := serveTable
	tableMu.RUnlock()

	comp, err := t.Compose(rand.New(rand.NewSource(seed)), input.Steps)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	res := model.ComposeResponse{ID: uuid.New().String(), DeadEnds: comp.DeadEnds}
	for _, g := range comp.Groups {
		voices := make([]string, len(g.Events))
		for i, ev := range g.Events {
			voices[i] = ev.String()
		}
		res.Groups = append(res.Groups, voices)
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(res)
}

func serve() {
	reloadTable()
	tableMu.RLock()
	ok := serveTable != nil
	tableMu.RUnlock()
	if !ok {
		panic("Could not load table: " + serveTablePath)
	}

	// collapse reload bursts into a single re-read
	debounced := debounce.New(500 * time.Millisecond)

	router := mux.NewRouter().StrictSlash(true)
	router.HandleFunc("/compose", handleCompose).Methods("POST")
	router.HandleFunc("/reload", func(w http.ResponseWriter, r *http.Request) {
		debounced(reloadTable)
		w.WriteHeader(http.StatusAccepted)
	}).Methods("POST")
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}).Methods("GET")

	fmt.Printf("Listening on %v\n", serveAddr)
	log.Fatal(http.ListenAndServe(serveAddr, cors.Default().Handler(router)))
}
