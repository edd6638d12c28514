package emitter

// runtimeModule is appended to modules that use try/catch. It turns Rust
// panics into classified failures that generated catch clauses match on.
const runtimeModule = `mod __rustic_rt {
    use std::any::Any;
    use std::cell::Cell;
    use std::panic::{self, AssertUnwindSafe};
    use std::sync::Once;

    thread_local! {
        static DEPTH: Cell<usize> = Cell::new(0);
    }

    static HOOK: Once = Once::new();

    pub struct Failure {
        kind: &'static str,
        message: String,
        payload: Box<dyn Any + Send>,
    }

    impl Failure {
        pub fn is(&self, name: &str) -> bool {
            name == "Exception" || name == self.kind
        }

        pub fn resume(self) -> ! {
            if DEPTH.with(|d| d.get()) == 0 {
                eprintln!("uncaught {}: {}", self.kind, self.message);
            }
            panic::resume_unwind(self.payload)
        }
    }

    fn install_hook() {
        HOOK.call_once(|| {
            let default_hook = panic::take_hook();
            panic::set_hook(Box::new(move |info| {
                if DEPTH.with(|d| d.get()) == 0 {
                    default_hook(info);
                }
            }));
        });
    }

    fn classify(message: &str) -> &'static str {
        if message.contains("divide by zero") || message.contains("divisor of zero") {
            "DivisionByZero"
        } else if message.contains("index out of bounds") {
            "IndexOutOfBounds"
        } else if message.contains("overflow") {
            "Overflow"
        } else {
            "Exception"
        }
    }

    pub fn catch<R>(f: impl FnOnce() -> R) -> Result<R, Failure> {
        install_hook();
        DEPTH.with(|d| d.set(d.get() + 1));
        let result = panic::catch_unwind(AssertUnwindSafe(f));
        DEPTH.with(|d| d.set(d.get() - 1));

        result.map_err(|payload| {
            let message = if let Some(s) = payload.downcast_ref::<&str>() {
                s.to_string()
            } else if let Some(s) = payload.downcast_ref::<String>() {
                s.clone()
            } else {
                String::from("unknown failure")
            };
            Failure {
                kind: classify(&message),
                message,
                payload,
            }
        })
    }
}
`
