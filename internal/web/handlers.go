package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"deepcut/internal/config"
	"deepcut/internal/genre"
	"deepcut/internal/pipeline"
	"deepcut/internal/search"
)

type SearchRequest struct {
	Genre     string `json:"genre"`
	Threshold int    `json:"threshold"`
}

type TrackResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Artist     string `json:"artist"`
	Album      string `json:"album,omitempty"`
	Popularity int    `json:"popularity"`
	PreviewURL string `json:"preview_url,omitempty"`
	PreviewVia string `json:"preview_via,omitempty"`
	URL        string `json:"url,omitempty"`
}

type JobResponse struct {
	ID          string         `json:"id"`
	Input       string         `json:"input"`
	Threshold   int            `json:"threshold"`
	Status      JobStatus      `json:"status"`
	Genre       string         `json:"genre,omitempty"`
	Method      string         `json:"method,omitempty"`
	Attempts    int            `json:"attempts"`
	Track       *TrackResponse `json:"track,omitempty"`
	PreviewPath string         `json:"preview_path,omitempty"`
	Error       string         `json:"error,omitempty"`
	CreatedAt   string         `json:"created_at"`
	StartedAt   *string        `json:"started_at,omitempty"`
	CompletedAt *string        `json:"completed_at,omitempty"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	threshold := req.Threshold
	if threshold == 0 {
		threshold = s.config.Threshold
	}
	if err := config.ValidateThreshold(threshold); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	input := strings.TrimSpace(req.Genre)
	job := s.jobMgr.CreateJob(input, threshold)
	s.logger.Info("Created job %s for genre %q (threshold %d)", job.ID, input, threshold)

	// Start search in background
	go s.processJob(job)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(jobToResponse(job))
}

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	jobs := s.jobMgr.ListJobs()
	responses := make([]*JobResponse, len(jobs))
	for i, job := range jobs {
		responses[i] = jobToResponse(job)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(responses)
}

func (s *Server) handleJobAction(w http.ResponseWriter, r *http.Request) {
	// Extract job ID from path: /api/jobs/{id} or /api/jobs/{id}/cancel
	path := strings.TrimPrefix(r.URL.Path, "/api/jobs/")
	parts := strings.Split(path, "/")
	if len(parts) == 0 || parts[0] == "" {
		http.Error(w, "Job ID required", http.StatusBadRequest)
		return
	}

	jobID := parts[0]

	// Handle GET /api/jobs/{id}
	if r.Method == http.MethodGet && len(parts) == 1 {
		job, err := s.jobMgr.GetJob(jobID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(jobToResponse(job))
		return
	}

	// Handle POST /api/jobs/{id}/cancel
	if r.Method == http.MethodPost && len(parts) == 2 && parts[1] == "cancel" {
		job, err := s.jobMgr.GetJob(jobID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}

		if job.Cancel != nil {
			job.Cancel()
		}

		s.jobMgr.UpdateJob(jobID, func(j *Job) {
			j.Status = StatusCancelled
		})

		job, _ = s.jobMgr.GetJob(jobID)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": string(job.Status)})
		return
	}

	http.Error(w, "Invalid request", http.StatusBadRequest)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = n
	}

	entries, err := s.runner.History(r.Context(), limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(entries)
}

func (s *Server) processJob(job Job) {
	ctx, cancel := context.WithCancel(s.ctx)
	defer cancel()

	// Store cancel function in job
	s.jobMgr.UpdateJob(job.ID, func(j *Job) {
		j.Cancel = cancel
		j.Status = StatusRunning
	})
	if current, err := s.jobMgr.GetJob(job.ID); err != nil || current.Status.Done() {
		return
	}

	s.logger.Info("Starting job %s", job.ID)

	hooks := pipeline.Hooks{
		OnGenreResolved: func(res genre.Resolution) {
			s.jobMgr.UpdateJob(job.ID, func(j *Job) {
				j.Genre = res.Genre
				j.Method = string(res.Method)
			})
		},
		OnAttempt: func(step int, _ search.Track, _ bool) {
			s.jobMgr.UpdateJob(job.ID, func(j *Job) {
				if step+1 > j.Attempts {
					j.Attempts = step + 1
				}
			})
		},
	}

	var words []string
	if job.Input != "" {
		words = strings.Fields(job.Input)
	}

	out, err := s.runner.Run(ctx, words, job.Threshold, hooks)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			s.logger.Info("Job %s cancelled", job.ID)
			s.jobMgr.UpdateJob(job.ID, func(j *Job) {
				j.Status = StatusCancelled
			})
			return
		}
		s.logger.Error("Job %s failed: %v", job.ID, err)
		s.jobMgr.UpdateJob(job.ID, func(j *Job) {
			j.Status = StatusFailed
			j.Error = err.Error()
		})
		return
	}

	s.jobMgr.UpdateJob(job.ID, func(j *Job) {
		j.Attempts = out.Result.Attempts
		if !out.Result.Found {
			j.Status = StatusNotFound
			return
		}
		track := out.Result.Track
		j.Track = &track
		j.PreviewSource = out.PreviewSource
		j.PreviewPath = out.PreviewPath
		j.Status = StatusCompleted
	})

	s.logger.Info("Job %s finished after %d attempts", job.ID, out.Result.Attempts)
}

func jobToResponse(job Job) *JobResponse {
	resp := &JobResponse{
		ID:          job.ID,
		Input:       job.Input,
		Threshold:   job.Threshold,
		Status:      job.Status,
		Genre:       job.Genre,
		Method:      job.Method,
		Attempts:    job.Attempts,
		PreviewPath: job.PreviewPath,
		Error:       job.Error,
		CreatedAt:   job.CreatedAt.Format("2006-01-02 15:04:05"),
	}

	if job.Track != nil {
		resp.Track = &TrackResponse{
			ID:         job.Track.ID,
			Name:       job.Track.Name,
			Artist:     job.Track.ArtistNames(),
			Album:      job.Track.Album,
			Popularity: job.Track.Popularity,
			PreviewURL: job.Track.PreviewURL,
			PreviewVia: job.PreviewSource,
			URL:        job.Track.URL,
		}
	}

	if job.StartedAt != nil {
		started := job.StartedAt.Format("2006-01-02 15:04:05")
		resp.StartedAt = &started
	}

	if job.CompletedAt != nil {
		completed := job.CompletedAt.Format("2006-01-02 15:04:05")
		resp.CompletedAt = &completed
	}

	return resp
}
