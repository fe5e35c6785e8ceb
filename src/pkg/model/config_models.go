// Package model defines the data structures used throughout the bloglist client.
package model

import "time"

// Config holds the settings loaded from the configuration file.
type Config struct {
	APIBaseURL          string        `yaml:"api_base_url"`
	RequestTimeout      time.Duration `yaml:"request_timeout"`
	NotificationTimeout time.Duration `yaml:"notification_timeout"`
	SortByLikes         bool          `yaml:"sort_by_likes"`
	StorageDriver       string        `yaml:"storage_driver"`
	StorageDir          string        `yaml:"storage_dir"`
	StorageFile         string        `yaml:"storage_file"`
	LogFolder           string        `yaml:"log_folder"`
	CommandLog          string        `yaml:"command_log"`
	ErrorLog            string        `yaml:"error_log"`
	InfoLog             string        `yaml:"info_log"`
	LogLevel            string        `yaml:"log_level"`
	HistoryFile         string        `yaml:"history_file"`
	UseColor            bool          `yaml:"use_color"`
}
