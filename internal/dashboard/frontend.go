package dashboard

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Frontend serves the single-page dashboard at the site root.
type Frontend struct{}

func NewFrontend() *Frontend { return &Frontend{} }

func (f *Frontend) RegisterRoutes(e *echo.Echo) {
	e.GET("/", f.serve)
}

func (f *Frontend) serve(c echo.Context) error {
	return c.HTML(http.StatusOK, frontendHTML)
}

const frontendHTML = `<!DOCTYPE html>
<html lang="en"><head>
<meta charset="utf-8"><meta name="viewport" content="width=device-width,initial-scale=1">
<title>Dark Flow</title>
<link href="https://fonts.googleapis.com/css2?family=JetBrains+Mono:wght@300;400;500;600;700&family=Space+Grotesk:wght@400;500;600;700&display=swap" rel="stylesheet">
<style>
:root{--bg:#08090d;--sf:#0f1118;--sf2:#161923;--sf3:#1e2230;--bd:#252a3a;--tx:#c8cdd8;--tx2:#8891a5;--tx3:#5a6278;--ac:#3b82f6;--gn:#10b981;--rd:#ef4444;--or:#f59e0b;--pr:#a855f7;--cy:#06b6d4}
*{margin:0;padding:0;box-sizing:border-box}
body{font-family:'JetBrains Mono',monospace;background:var(--bg);color:var(--tx);min-height:100vh}
.app{max-width:1440px;margin:0 auto;padding:20px 24px}
.hdr{display:flex;justify-content:space-between;align-items:center;padding:16px 0;border-bottom:1px solid var(--bd);margin-bottom:20px}
.hdr h1{font-family:'Space Grotesk',sans-serif;font-size:22px;font-weight:700;background:linear-gradient(135deg,var(--ac),var(--pr));-webkit-background-clip:text;-webkit-text-fill-color:transparent}
.live{font-size:9px;padding:3px 10px;border-radius:20px;letter-spacing:1.5px;font-weight:600;margin-left:12px;border:1px solid}
.live.ws{background:rgba(16,185,129,.1);color:var(--gn);border-color:rgba(16,185,129,.2);-webkit-text-fill-color:var(--gn)}
.live.sse{background:rgba(245,158,11,.1);color:var(--or);border-color:rgba(245,158,11,.2);-webkit-text-fill-color:var(--or)}
.live.off{background:rgba(239,68,68,.1);color:var(--rd);border-color:rgba(239,68,68,.2);-webkit-text-fill-color:var(--rd)}
.tick{display:flex;gap:20px;overflow-x:auto;padding:10px 0;margin-bottom:18px;border-bottom:1px solid var(--bd);font-size:12px;white-space:nowrap}
.tick .sym{color:var(--tx2)}.tick .up{color:var(--gn)}.tick .dn{color:var(--rd)}
.nav{display:flex;gap:4px;margin-bottom:20px;background:var(--sf);border-radius:10px;padding:4px;border:1px solid var(--bd)}
.nav button{font-family:'JetBrains Mono',monospace;font-size:11px;padding:9px 18px;border:none;background:0;color:var(--tx2);cursor:pointer;border-radius:8px;transition:.2s}
.nav button:hover{color:var(--tx);background:var(--sf2)}
.nav button.on{background:var(--ac);color:#fff}
.sts{display:grid;grid-template-columns:repeat(auto-fit,minmax(130px,1fr));gap:12px;margin-bottom:20px}
.st{background:var(--sf);border:1px solid var(--bd);border-radius:10px;padding:15px 16px}
.st .v{font-size:22px;font-weight:700}.st .v.b{color:var(--ac)}.st .v.g{color:var(--gn)}.st .v.r{color:var(--rd)}.st .v.p{color:var(--pr)}.st .v.c{color:var(--cy)}
.st .l{font-size:9px;color:var(--tx3);text-transform:uppercase;letter-spacing:.8px;margin-top:5px}
.pn{background:var(--sf);border:1px solid var(--bd);border-radius:12px;margin-bottom:18px;overflow:hidden}
.pn-h{display:flex;justify-content:space-between;align-items:center;padding:13px 18px;border-bottom:1px solid var(--bd);background:var(--sf2)}
.pn-h h2{font-family:'Space Grotesk',sans-serif;font-size:13px;font-weight:600}
table{width:100%;border-collapse:collapse}
th{text-align:left;font-size:9px;color:var(--tx3);text-transform:uppercase;letter-spacing:.8px;padding:10px 14px;border-bottom:1px solid var(--bd)}
td{padding:10px 14px;border-bottom:1px solid rgba(37,42,58,.4);font-size:12px}
tr:hover td{background:rgba(59,130,246,.02)}
.addr{color:var(--cy);font-size:11px}
.bg{display:inline-block;padding:2px 8px;border-radius:5px;font-size:9px;font-weight:600}
.bg-df{background:rgba(168,85,247,.12);color:#c084fc;border:1px solid rgba(168,85,247,.2)}
.bg-wh{background:rgba(6,182,212,.12);color:#22d3ee;border:1px solid rgba(6,182,212,.2)}
.bg-as{background:rgba(59,130,246,.12);color:#60a5fa;border:1px solid rgba(59,130,246,.2)}
.bg-al{background:rgba(239,68,68,.12);color:#f87171;border:1px solid rgba(239,68,68,.2)}
.side-buy{color:var(--gn);font-weight:600}.side-sell{color:var(--rd);font-weight:600}
.al{padding:11px 16px;border-radius:8px;margin:6px 14px;border-left:3px solid;font-size:12px}
.al-critical{background:rgba(239,68,68,.06);border-color:var(--rd);color:#fca5a5}
.al-warning{background:rgba(245,158,11,.06);border-color:var(--or);color:#fcd34d}
.al-info{background:rgba(59,130,246,.06);border-color:var(--ac);color:#93c5fd}
.al .tm{color:var(--tx3);font-size:10px;margin-top:4px}
.fg{display:flex;gap:10px;padding:12px 14px}
.fg input{flex:1;padding:10px 12px;background:var(--sf2);border:1px solid var(--bd);border-radius:8px;color:var(--tx);font-family:'JetBrains Mono',monospace;font-size:12px;outline:0}
.fg input:focus{border-color:var(--ac)}
.btn{font-family:'JetBrains Mono',monospace;font-size:11px;padding:10px 18px;border:none;border-radius:8px;cursor:pointer;font-weight:600;background:var(--ac);color:#fff}
.emp{text-align:center;padding:40px;color:var(--tx3);font-size:12px}
.scy{max-height:520px;overflow-y:auto}.scy::-webkit-scrollbar{width:5px}.scy::-webkit-scrollbar-thumb{background:var(--bd);border-radius:3px}
.gr2{display:grid;grid-template-columns:1fr 1fr;gap:18px}
@media(max-width:900px){.gr2{grid-template-columns:1fr}.sts{grid-template-columns:repeat(2,1fr)}}
.ib{width:56px;height:5px;background:var(--sf3);border-radius:3px;overflow:hidden;display:inline-block;vertical-align:middle;margin-left:6px}
.ib span{display:block;height:100%;border-radius:3px}
.tag{display:inline-block;font-size:9px;margin:1px 3px 1px 0;padding:3px 7px;background:var(--sf3);border-radius:4px;color:var(--tx2);border:1px solid var(--bd)}
</style></head><body>
<div id="root"></div>
<script src="https://cdnjs.cloudflare.com/ajax/libs/react/18.2.0/umd/react.production.min.js"></script>
<script src="https://cdnjs.cloudflare.com/ajax/libs/react-dom/18.2.0/umd/react-dom.production.min.js"></script>
<script src="https://cdnjs.cloudflare.com/ajax/libs/babel-standalone/7.23.9/babel.min.js"></script>
<script type="text/babel">
const{useState,useEffect,useCallback,useRef}=React;
const useFetch=(u,ms=8000)=>{const[d,sD]=useState(null);const ld=useCallback(()=>{fetch(u).then(r=>r.json()).then(j=>sD(j.data)).catch(()=>{})},[u]);useEffect(()=>{ld();const i=setInterval(ld,ms);return()=>clearInterval(i)},[ld,ms]);return{d,r:ld}};
const ab=a=>a?(a.length>13?a.slice(0,6)+'…'+a.slice(-4):a):'-';
const usd=v=>{if(v==null)return'-';const n=Math.abs(v),s=v<0?'-$':'$';if(n>=1e12)return s+(n/1e12).toFixed(2)+'T';if(n>=1e9)return s+(n/1e9).toFixed(2)+'B';if(n>=1e6)return s+(n/1e6).toFixed(2)+'M';if(n>=1e3)return s+(n/1e3).toFixed(1)+'K';return s+n.toFixed(0)};
const pct=v=>(v>=0?'+':'')+(v||0).toFixed(1)+'%';
const TA=t=>{if(!t)return'-';const d=Date.now()-new Date(t).getTime();if(d<60000)return'now';if(d<3.6e6)return Math.floor(d/6e4)+'m';if(d<8.64e7)return Math.floor(d/3.6e6)+'h';return Math.floor(d/8.64e7)+'d'};
const TB=t=>{const m={dark_flow:['bg-df','FLOW'],whale_transfer:['bg-wh','WHALE'],algo_signal:['bg-as','ALGO'],alert:['bg-al','ALERT']};const[c,l]=m[t]||['','?'];return<span className={'bg '+c}>{l}</span>};
const IB=v=>{const c=v>=.7?'var(--rd)':v>=.4?'var(--or)':'var(--gn)';return<span className="ib"><span style={{width:((v||0)*100)+'%',background:c}}/></span>};

// live feed: websocket first, sse after 3 consecutive failures
const MAX_WS_FAILURES=3,RECONNECT_MS=3000,CAP=50;
function useLiveFeed(){
  const[events,sEvents]=useState([]);
  const[transport,sTransport]=useState('off');
  const ids=useRef(new Set()),fails=useRef(0),closed=useRef(false);
  const push=ev=>{if(!ev||!ev.id||ids.current.has(ev.id))return;ids.current.add(ev.id);
    sEvents(p=>{const n=[ev,...p];if(n.length>CAP){n.slice(CAP).forEach(d=>ids.current.delete(d.id));return n.slice(0,CAP)}return n})};
  useEffect(()=>{
    closed.current=false;
    let sock=null,src=null;
    const proto=location.protocol==='https:'?'wss:':'ws:';
    const openSSE=()=>{
      if(closed.current)return;
      src=new EventSource('/live/sse');
      sTransport('sse');
      src.onmessage=m=>{try{const j=JSON.parse(m.data);push(j.event||j)}catch(e){}};
      src.onerror=()=>{src.close();sTransport('off');setTimeout(openSSE,RECONNECT_MS)};
    };
    const openWS=()=>{
      if(closed.current)return;
      sock=new WebSocket(proto+'//'+location.host+'/live/ws');
      sock.onopen=()=>{fails.current=0;sTransport('ws')};
      sock.onmessage=m=>{try{const j=JSON.parse(m.data);push(j.event||j)}catch(e){}};
      sock.onclose=()=>{
        sTransport('off');
        if(closed.current)return;
        fails.current+=1;
        if(fails.current>=MAX_WS_FAILURES){openSSE()}else{setTimeout(openWS,RECONNECT_MS)}
      };
    };
    fetch('/api/events').then(r=>r.json()).then(j=>(j.data&&j.data.rows||[]).slice().reverse().forEach(push)).catch(()=>{});
    openWS();
    return()=>{closed.current=true;if(sock)sock.close();if(src)src.close()};
  },[]);
  return{events,transport};
}

function App(){
  const[tab,sTab]=useState('overview');
  const{events,transport}=useLiveFeed();
  const{d:snap}=useFetch('/api/snapshot',15000);
  const{d:sys}=useFetch('/api/system',10000);
  const whales=events.filter(e=>e.type==='whale_transfer');

  return<div className="app">
    <div className="hdr">
      <div style={{display:'flex',alignItems:'center'}}>
        <h1>Dark Flow</h1>
        <span className={'live '+(transport==='ws'?'ws':transport==='sse'?'sse':'off')}>
          {transport==='ws'?'LIVE · WS':transport==='sse'?'LIVE · SSE':'OFFLINE'}
        </span>
      </div>
      <div style={{fontSize:10,color:'var(--tx3)'}}>{sys?.status?.environment||''}</div>
    </div>
    <Ticker prices={snap?.prices}/>
    <div className="sts">
      <div className="st"><div className="v b">{events.length}</div><div className="l">Feed Events</div></div>
      <div className="st"><div className="v c">{whales.length}</div><div className="l">Whales</div></div>
      <div className="st"><div className="v p">{(snap?.flow_state||[]).length}</div><div className="l">Symbols</div></div>
      <div className="st"><div className="v r">{(snap?.alerts||[]).length}</div><div className="l">Alerts</div></div>
      <div className="st"><div className="v g">{sys?.status?.relay_clients||0}</div><div className="l">Clients</div></div>
    </div>
    <div className="nav">
      {[['overview','Overview'],['feed','Live Feed'],['whales','Whale Transfers'],['alerts','Alerts'],['wallet','Wallet Intel']].map(([k,l])=>
        <button key={k} className={tab===k?'on':''} onClick={()=>sTab(k)}>{l}</button>)}
    </div>
    {tab==='overview'&&<OverviewTab snap={snap} events={events}/>}
    {tab==='feed'&&<FeedTab events={events}/>}
    {tab==='whales'&&<WhalesTab snap={snap}/>}
    {tab==='alerts'&&<AlertsTab snap={snap}/>}
    {tab==='wallet'&&<WalletTab/>}
  </div>
}

function Ticker({prices}){
  if(!prices||!prices.length)return null;
  return<div className="tick">{prices.map((p,i)=><span key={i}><span className="sym">{p.symbol} </span>
    {usd(p.price)} <span className={p.change_24h>=0?'up':'dn'}>{pct(p.change_24h)}</span></span>)}</div>
}

function OverviewTab({snap,events}){
  return<>
    <div className="gr2">
      <div className="pn"><div className="pn-h"><h2>Dark Flow State</h2></div>
        <table><thead><tr><th>Symbol</th><th>Regime</th><th>Intensity</th><th>Buy</th><th>Sell</th></tr></thead><tbody>
          {(snap?.flow_state||[]).map((s,i)=><tr key={i}><td style={{fontWeight:600}}>{s.symbol}</td>
            <td style={{color:s.regime==='accumulation'?'var(--gn)':s.regime==='distribution'?'var(--rd)':'var(--tx2)'}}>{s.regime}</td>
            <td>{Math.round((s.intensity||0)*100)}% {IB(s.intensity)}</td>
            <td className="side-buy">{Math.round((s.buy_pressure||0)*100)}%</td>
            <td className="side-sell">{Math.round((s.sell_pressure||0)*100)}%</td></tr>)}
        </tbody></table>
        {(!snap||!snap.flow_state||!snap.flow_state.length)&&<div className="emp">No flow data</div>}
      </div>
      <div className="pn"><div className="pn-h"><h2>Algo Fingerprints</h2></div>
        <table><thead><tr><th>Symbol</th><th>Pattern</th><th>Period</th><th>Strength</th></tr></thead><tbody>
          {(snap?.fingerprints||[]).map((f,i)=><tr key={i}><td style={{fontWeight:600}}>{f.symbol}</td>
            <td><span className="tag">{f.pattern}</span></td><td>{(f.dominant_period_sec||0).toFixed(1)}s</td>
            <td>{Math.round((f.strength||0)*100)}% {IB(f.strength)}</td></tr>)}
        </tbody></table>
        {(!snap||!snap.fingerprints||!snap.fingerprints.length)&&<div className="emp">No fingerprints</div>}
      </div>
    </div>
    <div className="pn"><div className="pn-h"><h2>Latest Events</h2></div>
      <EventTable events={events.slice(0,10)}/>
    </div>
  </>
}

function EventTable({events}){
  return<>
    <table><thead><tr><th>Type</th><th>Symbol</th><th>Side</th><th>Notional</th><th>Wallet</th><th>Seen</th></tr></thead><tbody>
      {events.map((e,i)=><tr key={e.id||i}><td>{TB(e.type)}</td><td style={{fontWeight:600}}>{e.symbol||'-'}</td>
        <td className={e.side==='buy'?'side-buy':e.side==='sell'?'side-sell':''}>{(e.side||'-').toUpperCase()}</td>
        <td>{usd(e.notional_usd)}</td><td className="addr">{ab(e.wallet)}</td><td style={{color:'var(--tx3)'}}>{TA(e.timestamp)}</td></tr>)}
    </tbody></table>
    {!events.length&&<div className="emp">Waiting for events…</div>}
  </>
}

function FeedTab({events}){
  return<div className="pn"><div className="pn-h"><h2>Live Feed ({events.length}/50)</h2></div>
    <div className="scy"><EventTable events={events}/></div>
  </div>
}

function WhalesTab({snap}){
  return<div className="pn"><div className="pn-h"><h2>Whale Transfers</h2></div>
    <div className="scy"><table><thead><tr><th>Asset</th><th>From</th><th>To</th><th>Amount</th><th>USD</th><th>Tx</th><th>Seen</th></tr></thead><tbody>
      {(snap?.transfers||[]).map((w,i)=><tr key={w.id||i}><td style={{fontWeight:600}}>{w.asset}</td>
        <td className="addr">{ab(w.from)}</td><td className="addr">{ab(w.to)}</td>
        <td>{(w.amount||0).toLocaleString()}</td><td>{usd(w.amount_usd)}</td>
        <td className="addr">{ab(w.tx_hash)}</td><td style={{color:'var(--tx3)'}}>{TA(w.timestamp)}</td></tr>)}
    </tbody></table>
    {(!snap||!snap.transfers||!snap.transfers.length)&&<div className="emp">No transfers</div>}</div>
  </div>
}

function AlertsTab({snap}){
  return<div className="pn"><div className="pn-h"><h2>Alerts</h2></div>
    <div className="scy" style={{padding:'8px 0'}}>
      {(snap?.alerts||[]).map((a,i)=><div key={a.id||i} className={'al al-'+(a.severity||'info')}>
        <div style={{fontWeight:500}}>{a.title}{a.symbol&&<span className="tag" style={{marginLeft:8}}>{a.symbol}</span>}</div>
        {a.message&&<div style={{color:'var(--tx2)',marginTop:3}}>{a.message}</div>}
        <div className="tm">{TA(a.triggered_at)}</div></div>)}
      {(!snap||!snap.alerts||!snap.alerts.length)&&<div className="emp">No alerts</div>}
    </div>
  </div>
}

function WalletTab(){
  const[addr,sAddr]=useState(''),[profile,sProfile]=useState(null);
  const lookup=()=>{if(addr.length<8)return;fetch('/api/wallets/'+encodeURIComponent(addr)).then(r=>r.json()).then(j=>sProfile(j.data)).catch(()=>{})};
  return<div className="pn"><div className="pn-h"><h2>Wallet Intelligence</h2></div>
    <div className="fg">
      <input placeholder="Wallet address…" value={addr} onChange={e=>sAddr(e.target.value)} onKeyDown={e=>e.key==='Enter'&&lookup()}/>
      <button className="btn" onClick={lookup}>Lookup</button>
    </div>
    {profile&&<table><tbody>
      <tr><td style={{color:'var(--tx3)'}}>Address</td><td className="addr">{profile.address}</td></tr>
      <tr><td style={{color:'var(--tx3)'}}>Label</td><td>{profile.label||'-'}</td></tr>
      <tr><td style={{color:'var(--tx3)'}}>Balance</td><td>{usd(profile.balance_usd)}</td></tr>
      <tr><td style={{color:'var(--tx3)'}}>Net flow 7d</td><td className={profile.net_flow_7d_usd>=0?'side-buy':'side-sell'}>{usd(profile.net_flow_7d_usd)}</td></tr>
      <tr><td style={{color:'var(--tx3)'}}>Tags</td><td>{(profile.tags||[]).map((t,i)=><span key={i} className="tag">{t}</span>)}</td></tr>
      <tr><td style={{color:'var(--tx3)'}}>Last active</td><td>{TA(profile.last_active)}</td></tr>
    </tbody></table>}
  </div>
}

ReactDOM.createRoot(document.getElementById('root')).render(<App/>);
</script></body></html>`
