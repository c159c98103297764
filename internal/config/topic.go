package config

import (
	"errors"
	"regexp"
	"strings"
)

var baseTopicRegexp = regexp.MustCompile("^[a-z0-9_]+$")

// CheckBaseTopic lowercases and validates the MQTT base topic.
func CheckBaseTopic(baseTopic string) (string, error) {
	lower := strings.ToLower(baseTopic)
	if !baseTopicRegexp.MatchString(lower) {
		return "", errors.New("invalid base topic. can only contain letters, numbers and underscores")
	}
	return lower, nil
}
