// Package manifest reads service manifests: HCL files whose `service`
// blocks amend the host's built-in boot catalog. A block can re-key a
// service, point it at a different backing resource, replace its params,
// or disable it entirely:
//
//	service "greeter" {
//		key      = "greeting"
//		resource = "/etc/patchbay/greeting.tmpl"
//		params = {
//			default_name = "operator"
//		}
//	}
//
//	service "clock" {
//		disabled = true
//	}
package manifest
