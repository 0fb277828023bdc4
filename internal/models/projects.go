package models

import (
	"fmt"
	"strings"
	"time"
)

const maxProjectNameLength = 200

type Project struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	ColorTheme     *string   `json:"colorTheme"`
	UseGlobalTheme bool      `json:"useGlobalTheme"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func ValidateProjectName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return fmt.Errorf("name is required")
	}
	if len(trimmed) > maxProjectNameLength {
		return fmt.Errorf("name must be %d characters or fewer", maxProjectNameLength)
	}
	return nil
}
