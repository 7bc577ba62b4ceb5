package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/jsphweid/tritrack/config"
	"github.com/jsphweid/tritrack/midi"
	"github.com/jsphweid/tritrack/model"
	"github.com/jsphweid/tritrack/report"
	"github.com/rs/cors"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "serves",
	Long:  `Serves POST /convert, which takes a MIDI file body and answers with the three track version.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		log.Printf("listening on %v", cfg.Server.Address)
		return http.ListenAndServe(cfg.Server.Address, NewHandler(cfg))
	},
}

// NewHandler returns the router wrapped in CORS handling.
func NewHandler(cfg *config.Config) http.Handler {
	router := mux.NewRouter().StrictSlash(true)
	router.HandleFunc("/convert", HandleConvert(cfg)).Methods("POST")
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods("GET")

	c := cors.New(cors.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		ExposedHeaders: []string{"X-Tritrack-Input", "X-Tritrack-Kept", "X-Tritrack-Dropped"},
	})
	return c.Handler(router)
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if encErr := json.NewEncoder(w).Encode(model.ErrorResponse{Error: err.Error()}); encErr != nil {
		log.Printf("failed to write error response: %v", encErr)
	}
}

func HandleConvert(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, cfg.Server.MaxUploadBytes))
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				writeError(w, http.StatusRequestEntityTooLarge, err)
				return
			}
			writeError(w, http.StatusBadRequest, err)
			return
		}

		parsed, err := midi.Parse(bytes.NewReader(body))
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}

		verbose, _ := strconv.ParseBool(r.URL.Query().Get("verbose"))
		collector := report.NewCollector(log.Writer(), verbose)
		res, err := ConvertFile(parsed, cfg, collector)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}

		var buf bytes.Buffer
		if err := midi.Encode(res.File, &buf); err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}

		w.Header().Set("Content-Type", "audio/midi")
		w.Header().Set("X-Tritrack-Input", strconv.Itoa(res.Stats.Input))
		w.Header().Set("X-Tritrack-Kept", strconv.Itoa(res.Stats.Kept()))
		w.Header().Set("X-Tritrack-Dropped", strconv.Itoa(res.Stats.Dropped))
		if _, err := w.Write(buf.Bytes()); err != nil {
			log.Printf("failed to write converted file: %v", err)
		}
	}
}
