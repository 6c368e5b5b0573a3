package shell

import (
	"errors"
	"html/template"
	"regexp"
	"strings"
)

var ErrInvalidFileID = errors.New("invalid file id")

var fileIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// embedTemplate wraps the drive preview iframe with the anti-download
// measures: no context menu, no save shortcuts, no text selection, download
// buttons hidden, plus an optional viewer watermark that drifts on a timer.
var embedTemplate = template.Must(template.New("embed").Parse(`<!DOCTYPE html>
<html>
<head>
<meta name="viewport" content="width=device-width, initial-scale=1.0, maximum-scale=1.0, user-scalable=no">
<style>
body, html {
  margin: 0;
  padding: 0;
  width: 100%;
  height: 100%;
  background: #000;
  overflow: hidden;
}
iframe {
  width: 100%;
  height: 100%;
  border: none;
}
body {
  -webkit-touch-callout: none;
  -webkit-user-select: none;
  user-select: none;
  overscroll-behavior: none;
}
</style>
<script>
document.addEventListener('contextmenu', function(e) {
  e.preventDefault();
  return false;
});

document.addEventListener('keydown', function(e) {
  if ((e.ctrlKey || e.metaKey) && (e.key === 's' || e.key === 'S')) {
    e.preventDefault();
    return false;
  }
});

document.addEventListener('selectstart', function(e) {
  e.preventDefault();
  return false;
});

function notifyHost(message) {
  var payload = JSON.stringify(message);
  if (window.ReactNativeWebView) {
    window.ReactNativeWebView.postMessage(payload);
  } else if (window.parent !== window) {
    window.parent.postMessage(payload, '*');
  }
}

document.addEventListener('DOMContentLoaded', function() {
  notifyHost({ type: 'dom_loaded' });
  var iframe = document.querySelector('iframe');
  if (iframe) {
    iframe.onload = function() {
      notifyHost({ type: 'iframe_loaded' });
      setTimeout(function() {
        notifyHost({ type: 'content_loaded' });
      }, 3000);
    };
  }
});

function updateWatermarkPosition() {
  var watermark = document.getElementById('watermark');
  if (watermark) {
    var maxX = window.innerWidth - watermark.offsetWidth;
    var maxY = window.innerHeight - watermark.offsetHeight;
    var timestamp = new Date().getTime();
    var period = 30000;
    var xPos = Math.floor((timestamp % period) / period * maxX);
    var yPos = Math.floor(((timestamp + 15000) % period) / period * maxY);
    watermark.style.left = xPos + 'px';
    watermark.style.top = yPos + 'px';
  }
  setTimeout(updateWatermarkPosition, 10000);
}

window.addEventListener('load', function() {
  if (document.getElementById('watermark')) {
    updateWatermarkPosition();
  }

  setInterval(function() {
    var downloadButtons = document.querySelectorAll('button[aria-label*="download"], a[aria-label*="download"]');
    downloadButtons.forEach(function(btn) {
      btn.style.display = 'none';
      btn.disabled = true;
    });

    var menuItems = document.querySelectorAll('[role="menu"], [role="menuitem"]');
    menuItems.forEach(function(menu) {
      if (menu.innerText && menu.innerText.toLowerCase().indexOf('download') !== -1) {
        menu.style.display = 'none';
      }
    });

    var videoElements = document.querySelectorAll('video');
    videoElements.forEach(function(video) {
      video.setAttribute('controlsList', 'nodownload');
      video.setAttribute('disablePictureInPicture', 'true');
      video.setAttribute('disableRemotePlayback', 'true');
    });
  }, 2000);
});
</script>
</head>
<body>
<iframe
  src="https://drive.google.com/file/d/{{.FileID}}/preview"
  width="100%"
  height="100%"
  frameborder="0"
  allowfullscreen
  allow="autoplay; encrypted-media"
  style="pointer-events: auto;"
></iframe>
{{- if .Watermark}}
<div id="watermark" style="position: absolute; top: 20px; right: 20px; padding: 5px 10px; background-color: rgba(0,0,0,0.5); color: rgba(255,255,255,0.7); font-size: 12px; font-family: Arial, sans-serif; border-radius: 4px; pointer-events: none; z-index: 9999;">{{.Watermark}}</div>
{{- end}}
</body>
</html>
`))

type embedData struct {
	FileID    string
	Watermark string
}

// SecureEmbedHTML renders the protected preview page for a drive file. The
// watermark is the viewer's identity and may be empty.
func SecureEmbedHTML(fileID, watermark string) (string, error) {
	if fileID == "" || !fileIDPattern.MatchString(fileID) {
		return "", ErrInvalidFileID
	}

	var b strings.Builder
	if err := embedTemplate.Execute(&b, embedData{FileID: fileID, Watermark: watermark}); err != nil {
		return "", err
	}

	return b.String(), nil
}
