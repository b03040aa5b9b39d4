package runtime

// preludeSource holds library functions written in TOG itself. They are
// bound in the global scope before a program's own functions, so a program
// may redefine any of them.
const preludeSource = `
fn sum(xs) {
	reduce(xs, 0, fn(acc, x) { acc + x })
}

fn product(xs) {
	reduce(xs, 1, fn(acc, x) { acc * x })
}

fn mean(xs) {
	gpu_mean(xs)
}

fn find(xs, pred) {
	for x in xs {
		if pred(x) {
			return Option::Some(x);
		}
	}
	Option::None
}

fn any(xs, pred) {
	for x in xs {
		if pred(x) {
			return true;
		}
	}
	false
}

fn all(xs, pred) {
	for x in xs {
		if !pred(x) {
			return false;
		}
	}
	true
}

fn ok_or(opt, err) {
	match opt {
		Option::Some(v) => Result::Ok(v),
		Option::None => Result::Err(err),
	}
}

fn parallel_map(xs, f) {
	map(xs, f)
}

fn parallel_filter(xs, pred) {
	filter(xs, pred)
}

fn parallel_reduce(xs, init, f) {
	reduce(xs, init, f)
}
`
