package aimeta

import (
	"fmt"
	"strings"
)

const claritySystemPrompt = "You are a software filename analyzer. Answer only with CLEAR or UNCLEAR."

func clarityUserPrompt(filename, folderHint string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Filename: %s\n", filename)
	if folderHint != "" {
		fmt.Fprintf(&b, "Folder: %s\n", folderHint)
	}
	b.WriteString(`
Judge whether this filename clearly identifies a specific piece of software.

A clear filename contains the software's actual name, ideally with a vendor
or version (for example "Adobe Photoshop 2024 v25.0.iso" or
"Visual Studio Code 1.85.exe").

An unclear filename is generic ("setup.exe", "installer.zip", "patch.exe")
or a meaningless token ("abc123.exe", "tmp_file.zip").

Answer with exactly one word:
- CLEAR: the filename identifies the software
- UNCLEAR: a human needs to look at it

Answer:`)
	return b.String()
}

const synthesisSystemPrompt = "You are an expert software analyst. You provide comprehensive, accurate metadata about software applications in JSON format. Always include ALL required fields in your response, even if you need to use empty strings or arrays for unknown information."

func synthesisUserPrompt(softwareName string) string {
	return fmt.Sprintf(`Provide detailed metadata for the software: %s

Return a JSON object with the following fields. ALL fields are REQUIRED - use empty strings "" or empty arrays [] if information is unknown.

Basic information:
- title: official software name
- version: version number (if known)
- platform: Windows, macOS, Linux, or Cross-platform
- developer: official developer/vendor name
- category: the BEST match by primary function: Graphics (image editing, design, 3D), Media (video/audio, playback, recording), Office (documents, spreadsheets), Business (accounting, ERP, CRM), Development (programming, IDE), Utility (system tools), or Security, Network, OS, Engineering, Hardware
- official_website: official website URL (full URL with https://)
- icon_url: official logo/icon image URL (leave "" if unknown)
- license_type: Free, Freemium, Trial, Commercial, or Open Source
- language: supported languages (e.g. "English, Korean" or "Multilingual")

Descriptions:
- description_short: 50-100 character one-sentence summary
- description_detailed: 200-300 character description of main features and purpose

Lists:
- features: array of 5-10 key features
- supported_formats: array of supported file formats (e.g. [".vmdk", ".iso"])

Objects:
- system_requirements: {"os": "...", "cpu": "...", "ram": "...", "disk_space": "...", "gpu": "...", "additional": "..."}
- installation_info: {"installer_type": "...", "file_size": "...", "internet_required": "..."}

Release notes:
- release_notes: major release notes or version history (2-3 lines if known)

Rules:
1. Return ONLY valid JSON - no markdown, no comments, no explanations.
2. Include ALL fields listed above.
3. Use empty strings "" or empty arrays [] for unknown information.
4. For well-known software, fill in as much detail as possible.`, softwareName)
}
