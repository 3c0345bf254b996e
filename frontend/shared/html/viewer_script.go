package html

// ViewerScript is the browser half of the modal and action contracts: it
// swaps server-rendered modal fragments in, toggles visibility and page
// scroll, and posts control actions.
func ViewerScript() string {
	return `<script>
(function () {
  function lockScroll(locked) {
    document.body.style.overflow = locked ? "hidden" : "auto";
  }

  function hide(id) {
    var modal = document.getElementById(id);
    if (modal) modal.style.display = "none";
    lockScroll(false);
  }

  function swapModal(id, url) {
    fetch(url, { headers: { "Accept": "text/html" } })
      .then(function (resp) {
        if (!resp.ok) throw new Error("HTTP " + resp.status);
        return resp.text();
      })
      .then(function (html) {
        var current = document.getElementById(id);
        if (!current) return;
        current.outerHTML = html;
        var modal = document.getElementById(id);
        if (modal) modal.style.display = "block";
        lockScroll(true);
      })
      .catch(function (err) {
        console.error("modal load failed", err);
      });
  }

  window.closeImageModal = function () { hide("imageModal"); };
  window.closeDetailModal = function () { hide("detailModal"); };

  window.openImageModalFor = function (id) {
    swapModal("imageModal", "/screenshots/" + id + "/image-modal");
  };

  window.openDetailModalFromData = function (element) {
    swapModal("detailModal", "/screenshots/" + element.getAttribute("data-id") + "/detail-modal");
  };

  window.updateStatus = function () {
    fetch("/status")
      .then(function (resp) { return resp.json(); })
      .then(function (data) {
        var badge = document.getElementById("statusBadge");
        if (!badge) return;
        badge.setAttribute("data-status", data.status);
        badge.textContent = data.label || data.status;
        var updated = document.getElementById("statusUpdatedAt");
        if (updated) updated.textContent = data.updatedAt;
      })
      .catch(function (err) {
        console.error("status refresh failed", err);
      });
  };

  window.sendAction = function (action) {
    fetch("/" + action, {
      method: "POST",
      headers: { "Content-Type": "application/json" }
    })
      .then(function (resp) {
        if (resp.ok) {
          setTimeout(function () {
            if (typeof window.updateStatus === "function") window.updateStatus();
          }, 1000);
        } else {
          alert("Ошибка при отправке действия: " + resp.status);
        }
      })
      .catch(function () {
        alert("Ошибка сети при отправке действия");
      });
  };

  document.addEventListener("keydown", function (e) {
    if (e.key === "Escape") {
      window.closeImageModal();
      window.closeDetailModal();
    }
  });

  window.addEventListener("click", function (e) {
    if (e.target && e.target.id === "imageModal") window.closeImageModal();
    if (e.target && e.target.id === "detailModal") window.closeDetailModal();
  });
})();
</script>`
}
