package overlay

// Builtin overlay variants used by the fallback plan generator when a
// project has no palette. HTML payloads may carry the {{seed}} token; the
// engine substitutes it at render time.

// BuiltinVariant pairs an overlay type with its markup.
type BuiltinVariant struct {
	OverlayType string
	Blocking    bool
	HTML        string
}

// BuiltinVariants returns the three built-in overlays in a fixed order so
// a seeded index draw is reproducible.
func BuiltinVariants() []BuiltinVariant {
	return []BuiltinVariant{
		{
			OverlayType: "cookie_banner",
			Blocking:    false,
			HTML: `<div class="iwa-cookie-{{seed}}" style="position:fixed;bottom:0;left:0;right:0;background:#1f2430;color:#fff;padding:14px 18px;z-index:99990;display:flex;justify-content:space-between;align-items:center">` +
				`<span>This site uses cookies to improve your experience.</span>` +
				`<button data-iwa-dismiss style="margin-left:12px">Accept</button></div>`,
		},
		{
			OverlayType: "top_banner",
			Blocking:    false,
			HTML: `<div class="iwa-banner-{{seed}}" style="position:fixed;top:0;left:0;right:0;background:#284b8f;color:#fff;padding:10px 16px;z-index:99990;text-align:center">` +
				`<span>Limited time offer: free shipping on all orders.</span>` +
				`<button data-iwa-dismiss style="margin-left:12px">Dismiss</button></div>`,
		},
		{
			OverlayType: "corner_modal",
			Blocking:    true,
			HTML: `<div class="iwa-modal-{{seed}}" style="position:fixed;bottom:24px;right:24px;background:#fff;color:#111;border:1px solid #ccc;box-shadow:0 4px 16px rgba(0,0,0,.25);padding:18px;max-width:320px;z-index:99995">` +
				`<p>Sign up for our newsletter and never miss an update.</p>` +
				`<button data-iwa-dismiss>No thanks</button></div>`,
		},
	}
}
