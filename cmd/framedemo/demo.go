package main

const demoOrigin = "https://demo.example"

// demoMarkup exercises the frame tree: a same-origin child, a cross-origin
// child below the fold that throttles until scrolled into view, and a
// remote child. The bar grows on each animation frame.
const demoMarkup = `<meta name="viewport" content="width=device-width, initial-scale=1">
<body style="background:#f4f1ea">
<h1 style="color:#1d2a3a">framecore</h1>
<p>A main frame with three children. The cross-origin child sits below the fold.</p>
<div id="bar" style="width:40;height:16;background:#2f6fb3"></div>
<ul><li>same-origin child</li><li>cross-origin child (throttled)</li><li>remote child</li></ul>
<iframe id="child" style="width:320;height:80" srcdoc="<div style='padding:8;background:#fff3c4'><p>same-origin child frame</p></div>"></iframe>
<div style="height:1200"></div>
<iframe id="ad" data-origin="https://ads.example" srcdoc="<p>cross-origin child frame</p>"></iframe>
<iframe id="remote" data-remote="1" data-origin="https://remote.example"></iframe>
<script>
var bar = document.getElementById("bar");
var frames = 0;
function grow() {
	frames++;
	bar.style.width = (40 + frames * 8) + "px";
	if (frames < 30) requestAnimationFrame(grow);
}
requestAnimationFrame(grow);
console.log("demo page loaded");
</script>
</body>`
