// Package provider implements the AI backends used to suggest translations
// for paths a language is missing.
package provider

import "github.com/ZaguanLabs/linguaswap"

// AIProvider is the interface for AI translation backends.
type AIProvider = linguaswap.AIProvider

// TranslateRequest is an alias to the root package type.
type TranslateRequest = linguaswap.TranslateRequest
