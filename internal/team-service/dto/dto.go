package dto

import "time"

type CreateTeamRequest struct {
	Name        string `json:"name"`
	City        string `json:"city"`
	FoundedYear int    `json:"founded_year,omitempty"`
}

type UpdateTeamRequest struct {
	Name        string `json:"name"`
	City        string `json:"city"`
	FoundedYear int    `json:"founded_year,omitempty"`
}

type TeamResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	City        string    `json:"city"`
	FoundedYear int       `json:"founded_year,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type CreateAthleteRequest struct {
	Name         string `json:"name"`
	Position     string `json:"position,omitempty"`
	JerseyNumber int    `json:"jersey_number,omitempty"`
}

type AthleteResponse struct {
	ID           string `json:"id"`
	TeamID       string `json:"team_id"`
	Name         string `json:"name"`
	Position     string `json:"position,omitempty"`
	JerseyNumber int    `json:"jersey_number,omitempty"`
}
