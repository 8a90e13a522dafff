package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// PageTitle is shown in the browser tab and the page header
const PageTitle = "Orchestra Music Generator"

const indexStyle = `
body {
  font-family: Arial, sans-serif;
  max-width: 800px;
  margin: 0 auto;
  padding: 20px;
  text-align: center;
}
button {
  background-color: #4CAF50;
  border: none;
  color: white;
  padding: 15px 32px;
  font-size: 16px;
  margin: 4px 2px;
  cursor: pointer;
  border-radius: 4px;
}
button:disabled { background-color: #9e9e9e; cursor: default; }
#status { margin-top: 20px; }
`

const indexScript = `
async function generateMusic() {
  const button = document.getElementById('generate');
  const status = document.getElementById('status');
  button.disabled = true;
  status.textContent = 'Generating music...';
  try {
    const response = await fetch('/generate');
    if (!response.ok) {
      throw new Error('status ' + response.status);
    }
    const blob = await response.blob();
    const url = window.URL.createObjectURL(blob);
    const a = document.createElement('a');
    a.href = url;
    a.download = 'generated_music.xml';
    document.body.appendChild(a);
    a.click();
    a.remove();
    window.URL.revokeObjectURL(url);
    status.textContent = 'Music generated successfully!';
  } catch (err) {
    status.textContent = 'Error generating music. Please try again.';
  } finally {
    button.disabled = false;
  }
}
`

// Index is the single page UI. It calls /generate and saves the returned
// MusicXML file.
func Index(version string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		parts := []string{
			"<!DOCTYPE html><html lang=\"en\"><head><meta charset=\"utf-8\">",
			"<meta name=\"viewport\" content=\"width=device-width, initial-scale=1\">",
			"<title>", templ.EscapeString(PageTitle), "</title>",
			"<style>", indexStyle, "</style></head><body>",
			"<h1>", templ.EscapeString(PageTitle), "</h1>",
			"<p>Generate a 30-measure orchestral piece in ABA form</p>",
			"<button id=\"generate\" onclick=\"generateMusic()\">Generate Music</button>",
			"<div id=\"status\"></div>",
			"<footer><small>", templ.EscapeString(version), "</small></footer>",
			"<script>", indexScript, "</script>",
			"</body></html>",
		}
		for _, p := range parts {
			if _, err := io.WriteString(w, p); err != nil {
				return err
			}
		}
		return nil
	})
}
