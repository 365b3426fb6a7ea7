package layout

// BaseStylesheet is always active; theme stylesheets layer on top of it.
const BaseStylesheet = "/assets/base.css"

const htmxScript = "https://unpkg.com/htmx.org@2.0.4/dist/htmx.min.js"
