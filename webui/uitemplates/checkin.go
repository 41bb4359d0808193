package uitemplates

import "html/template"

type CheckInParams struct {
	EventID    string
	EventTitle string
}

var checkInText = `{{define "title"}}Check-in{{end}}

{{define "breadcrumbs" -}}
<li class="breadcrumb-item"><a href="/">Home</a></li>
<li class="breadcrumb-item"><a href="/show-event?id={{.EventID}}">{{.EventTitle}}</a></li>
<li class="breadcrumb-item active" aria-current="page">Check-in</li>
{{- end}}

{{define "content"}}
<h1>Check-in for {{.EventTitle}}</h1>

<div id="result" class="mb-3"></div>

<div class="mb-3">
  <button type="button" class="btn btn-secondary" id="scan-toggle">Scan with camera</button>
  <div id="scanner" class="mt-2" hidden>
    <video id="scanner-video" playsinline style="max-width: 100%"></video>
    <canvas id="scanner-canvas" hidden></canvas>
  </div>
</div>

<form id="checkin-form">
  <div class="input-group">
    <input type="text" class="form-control" name="registration" id="registration" placeholder="Scan or type a ticket code" autofocus required>
    <button type="submit" class="btn btn-primary">Check In</button>
  </div>
</form>
{{end}}

{{define "scripts"}}
<script src="https://cdn.jsdelivr.net/npm/jsqr@1.4.0/dist/jsQR.min.js"></script>
<script>
(function() {
  var form = document.getElementById("checkin-form");
  var result = document.getElementById("result");
  var classes = {
    "ok": "alert alert-success",
    "already-used": "alert alert-warning",
    "wrong-event": "alert alert-danger",
    "not-found": "alert alert-danger"
  };

  function submitCode(code) {
    var body = new URLSearchParams();
    body.set("registration", code);
    fetch(location.pathname + location.search, {method: "POST", body: body})
      .then(function(resp) { return resp.json(); })
      .then(function(data) {
        result.className = classes[data.status] || "alert alert-danger";
        result.textContent = data.message + (data.userName ? " " + data.userName + " <" + data.userEmail + ">" : "");
        document.getElementById("registration").value = "";
        document.getElementById("registration").focus();
      });
  }

  form.addEventListener("submit", function(e) {
    e.preventDefault();
    submitCode(document.getElementById("registration").value);
  });

  var toggle = document.getElementById("scan-toggle");
  var scanner = document.getElementById("scanner");
  var video = document.getElementById("scanner-video");
  var canvas = document.getElementById("scanner-canvas");
  var scanning = false;
  var stream = null;

  function stopScanning() {
    scanning = false;
    if (stream) {
      stream.getTracks().forEach(function(track) { track.stop(); });
      stream = null;
    }
    video.srcObject = null;
    scanner.hidden = true;
    toggle.textContent = "Scan with camera";
  }

  function tick() {
    if (!scanning) return;
    if (video.readyState === video.HAVE_ENOUGH_DATA) {
      canvas.width = video.videoWidth;
      canvas.height = video.videoHeight;
      var ctx = canvas.getContext("2d");
      ctx.drawImage(video, 0, 0, canvas.width, canvas.height);
      var image = ctx.getImageData(0, 0, canvas.width, canvas.height);
      var code = jsQR(image.data, image.width, image.height, {inversionAttempts: "dontInvert"});
      if (code && code.data) {
        // One ticket per scan: stop the camera before submitting so the
        // same frame can't redeem twice.
        stopScanning();
        submitCode(code.data);
        return;
      }
    }
    requestAnimationFrame(tick);
  }

  toggle.addEventListener("click", function() {
    if (scanning) {
      stopScanning();
      return;
    }
    navigator.mediaDevices.getUserMedia({video: {facingMode: "environment"}})
      .then(function(s) {
        stream = s;
        video.srcObject = stream;
        video.play();
        scanner.hidden = false;
        toggle.textContent = "Stop scanning";
        scanning = true;
        requestAnimationFrame(tick);
      })
      .catch(function() {
        result.className = "alert alert-danger";
        result.textContent = "Camera access denied. Enable camera permissions or type the code.";
      });
  });
})();
</script>
{{end}}
`

var CheckInTemplate = template.Must(template.Must(template.New("base").Parse(baseText)).Parse(checkInText))
