package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConsole(t *testing.T) {
	var buf bytes.Buffer
	c := newConsole(&buf)

	c.Info("Extracting semantic keywords...")
	c.Keywords([]string{"leave", "PTO"})
	c.Document("policy.docx", "annual leave entitlement")
	c.Answer("policy.docx", "25 days")
	c.Warn("No matching document found.")
	c.Error("Failed to list drive files: 403")

	out := buf.String()
	assert.Contains(t, out, "Extracting semantic keywords...\n")
	assert.Contains(t, out, "Semantic Keywords:\n[\"leave\", \"PTO\"]\n")
	assert.Contains(t, out, "policy.docx\n\nDocument Content")
	assert.Contains(t, out, "annual leave entitlement\n")
	assert.Contains(t, out, "Answer: ~~~~~~~~~~~~~~~~~~~~~~~~~>>>>>\n25 days\n")
	assert.Contains(t, out, "WARNING: No matching document found.\n")
	assert.Contains(t, out, "ERROR: Failed to list drive files: 403\n")
}
